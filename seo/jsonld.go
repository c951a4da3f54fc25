package seo

import (
	"encoding/json"
	"strings"
)

const (
	schemaContext           = "https://schema.org"
	defaultOrganizationType = "MedicalOrganization"
	defaultConditionName    = "Mental Health Conditions"
	defaultCountry          = "US"
	defaultLogoPath         = "/logo.png"
	defaultProfilePath      = "/about"
)

var organizationPages = map[string]struct{}{
	"home":    {},
	"about":   {},
	"contact": {},
}

var medicalPageMarkers = []string{"psychiatry", "therapy", "services"}

// Classify picks the structured-data shape for a page. An explicit category
// wins; otherwise the page id decides: home, about and contact get the
// organization graph, service-like ids get a MedicalWebPage.
func Classify(pageID string, category PageCategory) Kind {
	switch category {
	case CategoryGeneral:
		return KindWebPage
	case CategoryOrganization:
		return KindOrganizationGraph
	case CategoryMedical:
		return KindMedicalWebPage
	}
	id := strings.ToLower(strings.TrimSpace(pageID))
	if _, ok := organizationPages[id]; ok {
		return KindOrganizationGraph
	}
	for _, marker := range medicalPageMarkers {
		if strings.Contains(id, marker) {
			return KindMedicalWebPage
		}
	}
	return KindWebPage
}

type structuredInput struct {
	global      *GlobalSettings
	override    *PageOverride
	title       string
	description string
	canonical   string
	image       string
}

func (in structuredInput) hint() SchemaHint {
	if in.override == nil || in.override.Schema == nil {
		return SchemaHint{}
	}
	return *in.override.Schema
}

// StructuredData renders the JSON-LD document for kind. The schema hint of
// the override only substitutes the organization type of the graph and the
// condition name of a medical page; it never changes the shape.
func StructuredData(kind Kind, in structuredInput) string {
	var doc map[string]interface{}
	switch kind {
	case KindOrganizationGraph:
		page := webPageNode(in)
		delete(page, "@context")
		doc = map[string]interface{}{
			"@context": schemaContext,
			"@graph": []interface{}{
				page,
				organizationNode(in),
				physicianNode(in),
			},
		}
	case KindMedicalWebPage:
		doc = webPageNode(in)
		doc["@type"] = "MedicalWebPage"
		doc["medicalAudience"] = map[string]string{"@type": "Patient"}
		doc["about"] = map[string]string{
			"@type": "MedicalCondition",
			"name":  firstNonEmpty(in.hint().Name, defaultConditionName),
		}
	default:
		doc = webPageNode(in)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func webPageNode(in structuredInput) map[string]interface{} {
	g := in.global
	data := map[string]interface{}{
		"@context": schemaContext,
		"@type":    "WebPage",
		"name":     in.title,
		"url":      in.canonical,
	}
	setString(data, "description", in.description)
	setString(data, "image", in.image)

	publisher := map[string]interface{}{
		"@type": "Organization",
		"name":  firstNonEmpty(g.Organization.Name, g.SiteName),
		"url":   firstNonEmpty(g.Organization.URL, g.SiteURL),
		"logo": map[string]string{
			"@type": "ImageObject",
			"url":   JoinURL(g.SiteURL, firstNonEmpty(g.Organization.Logo, g.DefaultImage, defaultLogoPath)),
		},
	}
	data["publisher"] = publisher
	return data
}

func organizationNode(in structuredInput) map[string]interface{} {
	g := in.global
	org := g.Organization
	data := map[string]interface{}{
		"@type": firstNonEmpty(in.hint().Type, org.Type, defaultOrganizationType),
		"name":  firstNonEmpty(org.Name, g.SiteName),
		"url":   firstNonEmpty(org.URL, g.SiteURL),
		"address": map[string]string{
			"@type":           "PostalAddress",
			"streetAddress":   org.Address.StreetAddress,
			"addressLocality": org.Address.AddressLocality,
			"addressRegion":   org.Address.AddressRegion,
			"postalCode":      org.Address.PostalCode,
			"addressCountry":  firstNonEmpty(org.Address.AddressCountry, defaultCountry),
		},
	}
	setString(data, "telephone", org.Telephone)
	setString(data, "email", org.Email)
	if org.Image != "" {
		data["image"] = JoinURL(g.SiteURL, org.Image)
	} else {
		setString(data, "image", in.image)
	}
	setString(data, "priceRange", org.PriceRange)
	if len(org.PaymentAccepted) > 0 {
		data["paymentAccepted"] = org.PaymentAccepted
	}
	setString(data, "currenciesAccepted", org.CurrenciesAccepted)
	if len(org.OpeningHours) > 0 {
		hours := make([]map[string]string, 0, len(org.OpeningHours))
		for _, h := range org.OpeningHours {
			hours = append(hours, map[string]string{
				"@type":     "OpeningHoursSpecification",
				"dayOfWeek": h.DayOfWeek,
				"opens":     h.Opens,
				"closes":    h.Closes,
			})
		}
		data["openingHoursSpecification"] = hours
	}
	return data
}

func physicianNode(in structuredInput) map[string]interface{} {
	g := in.global
	p := g.Physician
	data := map[string]interface{}{
		"@type": "Person",
		"name":  p.Name,
		"worksFor": map[string]string{
			"@type": "Organization",
			"name":  firstNonEmpty(g.Organization.Name, g.SiteName),
		},
		"alumniOf": namedNodes("EducationalOrganization", p.AlumniOf),
		"memberOf": namedNodes("Organization", p.MemberOf),
		"url":      JoinURL(g.SiteURL, firstNonEmpty(p.ProfilePath, defaultProfilePath)),
	}
	setString(data, "jobTitle", p.JobTitle)
	if len(p.MedicalSpecialty) > 0 {
		data["medicalSpecialty"] = p.MedicalSpecialty
	}
	if p.Image != "" {
		data["image"] = JoinURL(g.SiteURL, p.Image)
	}
	return data
}

func namedNodes(typ string, names []string) []map[string]string {
	out := make([]map[string]string, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]string{"@type": typ, "name": n})
	}
	return out
}

func setString(m map[string]interface{}, key, val string) {
	if val != "" {
		m[key] = val
	}
}
