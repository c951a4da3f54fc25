// Package seo resolves page metadata for the practice site. It merges the
// global site settings with an optional per-page override and produces the
// title, Open Graph, Twitter Card, robots and JSON-LD values that the head of
// every page needs.
package seo

// GlobalSettings is the single site-wide settings record. It is fetched by the
// caller and passed in explicitly; the resolver never reads ambient state.
type GlobalSettings struct {
	SiteName        string       `json:"siteName" yaml:"siteName"`
	SiteURL         string       `json:"siteUrl" yaml:"siteUrl"`
	SiteDescription string       `json:"siteDescription" yaml:"siteDescription"`
	DefaultImage    string       `json:"defaultImage" yaml:"defaultImage"`
	DefaultKeywords []string     `json:"defaultKeywords" yaml:"defaultKeywords"`
	Robots          string       `json:"robots" yaml:"robots"`
	Organization    Organization `json:"organization" yaml:"organization"`
	Physician       Physician    `json:"physician" yaml:"physician"`
	Social          Social       `json:"social" yaml:"social"`
	Geo             Geo          `json:"geo" yaml:"geo"`
}

// Organization describes the practice itself.
type Organization struct {
	Name               string         `json:"name" yaml:"name"`
	Type               string         `json:"type" yaml:"type"` // schema.org type, e.g. MedicalOrganization
	URL                string         `json:"url" yaml:"url"`
	Logo               string         `json:"logo" yaml:"logo"`
	Image              string         `json:"image" yaml:"image"`
	Address            Address        `json:"address" yaml:"address"`
	Telephone          string         `json:"telephone" yaml:"telephone"`
	Email              string         `json:"email" yaml:"email"`
	PriceRange         string         `json:"priceRange" yaml:"priceRange"`
	PaymentAccepted    []string       `json:"paymentAccepted" yaml:"paymentAccepted"`
	CurrenciesAccepted string         `json:"currenciesAccepted" yaml:"currenciesAccepted"`
	OpeningHours       []OpeningHours `json:"openingHours" yaml:"openingHours"`
}

// Address is a postal address.
type Address struct {
	StreetAddress   string `json:"streetAddress" yaml:"streetAddress"`
	AddressLocality string `json:"addressLocality" yaml:"addressLocality"`
	AddressRegion   string `json:"addressRegion" yaml:"addressRegion"`
	PostalCode      string `json:"postalCode" yaml:"postalCode"`
	AddressCountry  string `json:"addressCountry" yaml:"addressCountry"`
}

// OpeningHours is one opening-hours row, e.g. Monday 09:00-17:00.
type OpeningHours struct {
	DayOfWeek string `json:"dayOfWeek" yaml:"dayOfWeek"`
	Opens     string `json:"opens" yaml:"opens"`
	Closes    string `json:"closes" yaml:"closes"`
}

// Physician describes the practicing physician.
type Physician struct {
	Name             string   `json:"name" yaml:"name"`
	JobTitle         string   `json:"jobTitle" yaml:"jobTitle"`
	MedicalSpecialty []string `json:"medicalSpecialty" yaml:"medicalSpecialty"`
	AlumniOf         []string `json:"alumniOf" yaml:"alumniOf"`
	MemberOf         []string `json:"memberOf" yaml:"memberOf"`
	Image            string   `json:"image" yaml:"image"`
	ProfilePath      string   `json:"profilePath" yaml:"profilePath"` // default "/about"
}

// Social holds social-preview settings.
type Social struct {
	TwitterHandle   string `json:"twitterHandle" yaml:"twitterHandle"`
	TwitterCardType string `json:"twitterCardType" yaml:"twitterCardType"`
}

// Geo holds the static geo meta tag values.
type Geo struct {
	Region    string `json:"region" yaml:"region"`       // geo.region, e.g. US-MA
	PlaceName string `json:"placeName" yaml:"placeName"` // geo.placename
	Latitude  string `json:"latitude" yaml:"latitude"`
	Longitude string `json:"longitude" yaml:"longitude"`
}

// PageCategory steers which structured-data shape a page gets.
type PageCategory string

const (
	// CategoryAuto derives the category from the page id.
	CategoryAuto         PageCategory = ""
	CategoryGeneral      PageCategory = "general"
	CategoryOrganization PageCategory = "organization"
	CategoryMedical      PageCategory = "medical"
)

// Valid reports whether c is one of the known categories.
func (c PageCategory) Valid() bool {
	switch c {
	case CategoryAuto, CategoryGeneral, CategoryOrganization, CategoryMedical:
		return true
	}
	return false
}

// SchemaHint optionally adjusts the structured data of a page.
type SchemaHint struct {
	Type string `json:"type,omitempty" yaml:"type"`
	Name string `json:"name,omitempty" yaml:"name"`
}

// PageOverride shadows global defaults for a single page. Every field is
// optional; the zero value means "use the global default".
type PageOverride struct {
	Title              string       `json:"title,omitempty" yaml:"title"`
	Description        string       `json:"description,omitempty" yaml:"description"`
	Keywords           []string     `json:"keywords,omitempty" yaml:"keywords"`
	CanonicalPath      string       `json:"canonical,omitempty" yaml:"canonical"`
	OGType             string       `json:"ogType,omitempty" yaml:"ogType"`
	OGTitle            string       `json:"ogTitle,omitempty" yaml:"ogTitle"`
	OGDescription      string       `json:"ogDescription,omitempty" yaml:"ogDescription"`
	OGImage            string       `json:"ogImage,omitempty" yaml:"ogImage"`
	TwitterCard        string       `json:"twitterCard,omitempty" yaml:"twitterCard"`
	TwitterTitle       string       `json:"twitterTitle,omitempty" yaml:"twitterTitle"`
	TwitterDescription string       `json:"twitterDescription,omitempty" yaml:"twitterDescription"`
	TwitterImage       string       `json:"twitterImage,omitempty" yaml:"twitterImage"`
	NoIndex            bool         `json:"noIndex,omitempty" yaml:"noIndex"`
	Schema             *SchemaHint  `json:"schema,omitempty" yaml:"schema"`
	Category           PageCategory `json:"category,omitempty" yaml:"category"`
	Language           string       `json:"language,omitempty" yaml:"language"`
	Priority           float64      `json:"priority,omitempty" yaml:"priority"`
	ChangeFreq         string       `json:"changeFreq,omitempty" yaml:"changeFreq"`
}

// Kind names the JSON-LD shape that was emitted for a page.
type Kind string

const (
	KindWebPage           Kind = "WebPage"
	KindOrganizationGraph Kind = "OrganizationGraph"
	KindMedicalWebPage    Kind = "MedicalWebPage"
)

// Metadata is the fully merged, render-ready metadata for one page view.
// It is a value: recompute it rather than mutating it.
type Metadata struct {
	PageID             string   `json:"pageId"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Keywords           []string `json:"keywords"`
	Canonical          string   `json:"canonical"`
	OGType             string   `json:"ogType"`
	OGTitle            string   `json:"ogTitle"`
	OGDescription      string   `json:"ogDescription"`
	OGImage            string   `json:"ogImage"`
	OGURL              string   `json:"ogUrl"`
	TwitterCard        string   `json:"twitterCard"`
	TwitterTitle       string   `json:"twitterTitle"`
	TwitterDescription string   `json:"twitterDescription"`
	TwitterImage       string   `json:"twitterImage"`
	Robots             string   `json:"robots"`
	StructuredData     string   `json:"structuredData"`
	Kind               Kind     `json:"kind"`
	Language           string   `json:"language,omitempty"`
	Degraded           bool     `json:"degraded,omitempty"`
}
