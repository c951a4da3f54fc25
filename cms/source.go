package cms

import (
	"context"
	"errors"

	"github.com/eringen/clinicseo/seo"
)

// Source adapts a Client to seo.Source.
type Source struct {
	client *Client
}

// NewSource creates a Source over c.
func NewSource(c *Client) *Source {
	return &Source{client: c}
}

// GlobalSettings implements seo.Source.
func (s *Source) GlobalSettings(ctx context.Context) (*seo.GlobalSettings, error) {
	doc, err := s.client.GlobalSettings(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, seo.ErrConfigurationMissing
	}
	if err != nil {
		return nil, &seo.FetchError{Store: seo.StoreGlobal, Err: err}
	}
	return doc.toSEO(), nil
}

// PageOverride implements seo.Source.
func (s *Source) PageOverride(ctx context.Context, pageID string) (*seo.PageOverride, error) {
	doc, err := s.client.SEOSettings(ctx, pageID)
	if errors.Is(err, ErrNotFound) {
		return nil, seo.ErrOverrideNotFound
	}
	if err != nil {
		return nil, &seo.FetchError{Store: seo.StoreOverride, PageID: pageID, Err: err}
	}
	return doc.toSEO(), nil
}

func (d *GlobalSettingsDoc) toSEO() *seo.GlobalSettings {
	g := &seo.GlobalSettings{
		SiteName:        d.SiteName,
		SiteURL:         d.SiteURL,
		SiteDescription: firstNonEmpty(d.DefaultMetaDescription, d.SiteDescription),
		DefaultImage:    d.DefaultImageURL,
		DefaultKeywords: d.DefaultKeywords,
		Robots:          d.Robots,
		Organization: seo.Organization{
			Name:               d.OrganizationName,
			Type:               d.OrganizationType,
			Telephone:          d.Telephone,
			Email:              d.Email,
			PriceRange:         d.PriceRange,
			PaymentAccepted:    d.PaymentAccepted,
			CurrenciesAccepted: d.CurrenciesAccepted,
			Address: seo.Address{
				StreetAddress:   d.Address.StreetAddress,
				AddressLocality: d.Address.AddressLocality,
				AddressRegion:   d.Address.AddressRegion,
				PostalCode:      d.Address.PostalCode,
				AddressCountry:  d.Address.AddressCountry,
			},
		},
		Physician: seo.Physician{
			Name:             d.PhysicianName,
			JobTitle:         d.PhysicianJobTitle,
			MedicalSpecialty: d.MedicalSpecialty,
			AlumniOf:         d.AlumniOf,
			MemberOf:         d.MemberOf,
			Image:            d.PhysicianImageURL,
		},
		Social: seo.Social{
			TwitterHandle:   d.TwitterHandle,
			TwitterCardType: d.TwitterCardType,
		},
	}
	for _, h := range d.OpeningHours {
		g.Organization.OpeningHours = append(g.Organization.OpeningHours, seo.OpeningHours{
			DayOfWeek: h.DayOfWeek,
			Opens:     h.Opens,
			Closes:    h.Closes,
		})
	}
	return g
}

func (s *SEOSettings) toSEO() *seo.PageOverride {
	o := &seo.PageOverride{
		Title:              s.Title,
		Description:        s.Description,
		Keywords:           s.Keywords,
		CanonicalPath:      firstNonEmpty(s.CanonicalURL, s.PageSlug),
		OGType:             s.OGType,
		OGTitle:            s.OGTitle,
		OGDescription:      s.OGDescription,
		OGImage:            s.OGImageURL,
		TwitterCard:        s.TwitterCard,
		TwitterTitle:       s.TwitterTitle,
		TwitterDescription: s.TwitterDescription,
		TwitterImage:       s.TwitterImageURL,
		NoIndex:            s.NoIndex,
		Category:           seo.PageCategory(s.Category),
		Language:           s.Language,
		Priority:           s.Priority,
		ChangeFreq:         s.ChangeFrequency,
	}
	if !o.Category.Valid() {
		o.Category = seo.CategoryAuto
	}
	if h := s.Hint(); h != nil {
		o.Schema = &seo.SchemaHint{Type: h.Type, Name: h.Name}
	}
	return o
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
