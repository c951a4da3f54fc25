package cms

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Slug is a URL slug field.
type Slug struct {
	Current string `json:"current"`
}

// Image is an image field. URL is filled by queries that project the asset.
type Image struct {
	Asset struct {
		Ref string `json:"_ref"`
	} `json:"asset"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Page is a generic content page.
type Page struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Slug        Slug            `json:"slug"`
	Description string          `json:"description,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
	Language    string          `json:"language,omitempty"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
}

// Service categories.
const (
	CategoryAdultPsychiatry = "adult-psychiatry"
	CategoryChildPsychiatry = "child-psychiatry"
	CategoryAdultTherapy    = "adult-therapy"
	CategoryChildTherapy    = "child-therapy"
	CategorySpecialized     = "specialized"
)

// Service is one clinical service offered by the practice.
type Service struct {
	ID               string          `json:"_id"`
	Title            string          `json:"title"`
	Slug             Slug            `json:"slug"`
	ShortDescription string          `json:"shortDescription"`
	FullDescription  json.RawMessage `json:"fullDescription,omitempty"`
	Category         string          `json:"category"`
	Features         []string        `json:"features,omitempty"`
	Image            *Image          `json:"image,omitempty"`
	Order            int             `json:"order"`
	IsActive         bool            `json:"isActive"`
	Language         string          `json:"language,omitempty"`
}

// PracticeInfo holds the practice contact details.
type PracticeInfo struct {
	ID           string `json:"_id"`
	PracticeName string `json:"practiceName"`
	Tagline      string `json:"tagline,omitempty"`
	Address      struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		ZipCode string `json:"zipCode"`
		Country string `json:"country"`
	} `json:"address"`
	Contact struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
		Fax   string `json:"fax,omitempty"`
	} `json:"contact"`
	Hours         map[string]string `json:"hours,omitempty"`
	Insurance     []string          `json:"insurance,omitempty"`
	Languages     []string          `json:"languages,omitempty"`
	EmergencyInfo string            `json:"emergencyInfo,omitempty"`
	ParkingInfo   string            `json:"parkingInfo,omitempty"`
}

// Education is one degree on a staff profile.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        int    `json:"year,omitempty"`
}

// Staff is a staff profile.
type Staff struct {
	ID             string          `json:"_id"`
	Name           string          `json:"name"`
	Title          string          `json:"title"`
	Credentials    []string        `json:"credentials,omitempty"`
	Bio            json.RawMessage `json:"bio,omitempty"`
	Specialties    []string        `json:"specialties,omitempty"`
	Languages      []string        `json:"languages,omitempty"`
	Image          *Image          `json:"image,omitempty"`
	Order          int             `json:"order"`
	IsActive       bool            `json:"isActive"`
	Education      []Education     `json:"education,omitempty"`
	Certifications []string        `json:"certifications,omitempty"`
}

// Announcement is a news item shown on the site.
type Announcement struct {
	ID             string          `json:"_id"`
	Title          string          `json:"title"`
	Content        json.RawMessage `json:"content,omitempty"`
	Type           string          `json:"type"` // general, urgent, update, holiday
	Published      bool            `json:"published"`
	PublishedAt    time.Time       `json:"publishedAt"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
	ShowOnHomepage bool            `json:"showOnHomepage"`
	Language       string          `json:"language,omitempty"`
}

// Expired reports whether a is past its expiry at now.
func (a Announcement) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !now.Before(*a.ExpiresAt)
}

// SchemaHint is the optional structured-data hint on an SEO document.
type SchemaHint struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
}

// SEOSettings is the per-page SEO document.
type SEOSettings struct {
	ID                 string      `json:"_id"`
	PageName           string      `json:"pageName"`
	PageSlug           string      `json:"pageSlug,omitempty"`
	Title              string      `json:"title,omitempty"`
	Description        string      `json:"description,omitempty"`
	Keywords           []string    `json:"keywords,omitempty"`
	CanonicalURL       string      `json:"canonicalUrl,omitempty"`
	OGType             string      `json:"ogType,omitempty"`
	OGTitle            string      `json:"ogTitle,omitempty"`
	OGDescription      string      `json:"ogDescription,omitempty"`
	OGImageURL         string      `json:"ogImageUrl,omitempty"`
	TwitterCard        string      `json:"twitterCard,omitempty"`
	TwitterTitle       string      `json:"twitterTitle,omitempty"`
	TwitterDescription string      `json:"twitterDescription,omitempty"`
	TwitterImageURL    string      `json:"twitterImageUrl,omitempty"`
	NoIndex            bool        `json:"noIndex,omitempty"`
	Schema             *SchemaHint `json:"schema,omitempty"`
	StructuredData     string      `json:"structuredData,omitempty"`
	Category           string      `json:"category,omitempty"`
	Language           string      `json:"language,omitempty"`
	Priority           float64     `json:"priority,omitempty"`
	ChangeFrequency    string      `json:"changeFrequency,omitempty"`
}

// Hint returns the schema hint, falling back to a hint encoded as JSON in
// StructuredData.
func (s *SEOSettings) Hint() *SchemaHint {
	if s.Schema != nil && (s.Schema.Type != "" || s.Schema.Name != "") {
		return s.Schema
	}
	if strings.TrimSpace(s.StructuredData) == "" {
		return nil
	}
	var h SchemaHint
	if err := json.Unmarshal([]byte(s.StructuredData), &h); err != nil {
		return nil
	}
	if h.Type == "" && h.Name == "" {
		return nil
	}
	return &h
}

// GlobalSettingsDoc is the site-wide settings document, with image assets
// projected to URLs.
type GlobalSettingsDoc struct {
	SiteName               string   `json:"siteName"`
	SiteURL                string   `json:"siteUrl"`
	SiteDescription        string   `json:"siteDescription"`
	DefaultImageURL        string   `json:"defaultImageUrl,omitempty"`
	DefaultMetaDescription string   `json:"defaultMetaDescription,omitempty"`
	DefaultKeywords        []string `json:"defaultKeywords,omitempty"`
	Robots                 string   `json:"robots,omitempty"`
	TwitterHandle          string   `json:"twitterHandle,omitempty"`
	TwitterCardType        string   `json:"twitterCardType,omitempty"`

	OrganizationName string `json:"organizationName"`
	OrganizationType string `json:"organizationType,omitempty"`
	Address          struct {
		StreetAddress   string `json:"streetAddress"`
		AddressLocality string `json:"addressLocality"`
		AddressRegion   string `json:"addressRegion"`
		PostalCode      string `json:"postalCode"`
		AddressCountry  string `json:"addressCountry"`
	} `json:"address"`
	Telephone          string   `json:"telephone,omitempty"`
	Email              string   `json:"email,omitempty"`
	PriceRange         string   `json:"priceRange,omitempty"`
	PaymentAccepted    []string `json:"paymentAccepted,omitempty"`
	CurrenciesAccepted string   `json:"currenciesAccepted,omitempty"`
	OpeningHours       []struct {
		DayOfWeek string `json:"dayOfWeek"`
		Opens     string `json:"opens"`
		Closes    string `json:"closes"`
	} `json:"openingHours,omitempty"`

	PhysicianName     string   `json:"physicianName,omitempty"`
	PhysicianJobTitle string   `json:"physicianJobTitle,omitempty"`
	MedicalSpecialty  []string `json:"medicalSpecialty,omitempty"`
	AlumniOf          []string `json:"alumniOf,omitempty"`
	MemberOf          []string `json:"memberOf,omitempty"`
	PhysicianImageURL string   `json:"physicianImageUrl,omitempty"`
}

// HomePage holds the editable home page sections. Sections are kept raw; the
// site renders them client side.
type HomePage struct {
	ID              string          `json:"_id"`
	Title           string          `json:"title"`
	HeroSection     json.RawMessage `json:"heroSection,omitempty"`
	ServicesSection json.RawMessage `json:"servicesSection,omitempty"`
	AboutSection    json.RawMessage `json:"aboutSection,omitempty"`
	VirtualInPerson json.RawMessage `json:"virtualInPersonSection,omitempty"`
	CTASection      json.RawMessage `json:"ctaSection,omitempty"`
}

// ImageURL builds the CDN URL for an image asset reference of the form
// image-<id>-<width>x<height>-<format>.
func ImageURL(projectID, dataset, ref string) string {
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" || !strings.Contains(parts[2], "x") {
		return ""
	}
	return fmt.Sprintf("https://cdn.sanity.io/images/%s/%s/%s-%s.%s", projectID, dataset, parts[1], parts[2], parts[3])
}
