package clinicseo

import "github.com/eringen/clinicseo/seo"

// Route maps a site path to the page id used for SEO lookups.
type Route struct {
	Path   string
	PageID string
}

// PageStatus is one row of the admin dashboard.
type PageStatus struct {
	Route       Route
	HasOverride bool   // an admin override is stored
	UpdatedAt   string // RFC 3339, empty without override
	Title       string // resolved title
	Robots      string
	Kind        seo.Kind
}

// OverrideRecord is an admin-edited override as stored.
type OverrideRecord struct {
	PageID    string
	Override  seo.PageOverride
	UpdatedAt string
}

// ShareImage is an uploaded social share image.
type ShareImage struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// URL returns the public path of the image.
func (i ShareImage) URL() string {
	return "/" + uploadsSubdir + "/" + i.Filename
}
