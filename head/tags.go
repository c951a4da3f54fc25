// Package head writes resolved SEO metadata into the <head> of an HTML
// document. Tags are upserted by selector, so applying the same metadata
// twice leaves the document unchanged and applying metadata for another page
// overwrites every managed tag.
package head

import (
	"fmt"
	"html"
	"strings"

	"github.com/eringen/clinicseo/seo"
)

// ManagedAttr marks the tags this package owns.
const ManagedAttr = "data-seo"

// Options carries the static, site-wide values that are not part of the
// per-page metadata.
type Options struct {
	SiteName        string  // og:site_name
	Author          string  // author/copyright on the home page
	Geo             seo.Geo // static geo tags
	DefaultLanguage string  // <html lang> when the page sets none, default "en"
	HomePageID      string  // default "home"
}

func (o Options) withDefaults() Options {
	if o.DefaultLanguage == "" {
		o.DefaultLanguage = "en"
	}
	if o.HomePageID == "" {
		o.HomePageID = "home"
	}
	return o
}

// tag is one managed head element. key/keyVal identify it, attr carries the
// value (empty attr means the value is the element's text).
type tag struct {
	element string
	key     string
	keyVal  string
	attr    string
	value   string
}

func (t tag) selector() string {
	if t.key == "" {
		return t.element
	}
	return fmt.Sprintf(`%s[%s=%q]`, t.element, t.key, t.keyVal)
}

// markup returns the empty element used when the tag does not exist yet.
func (t tag) markup() string {
	open := "<" + t.element
	if t.key != "" {
		open += fmt.Sprintf(` %s="%s"`, t.key, html.EscapeString(t.keyVal))
	}
	open += ">"
	switch t.element {
	case "meta", "link":
		return open
	}
	return open + "</" + t.element + ">"
}

func meta(name, value string) tag {
	return tag{element: "meta", key: "name", keyVal: name, attr: "content", value: value}
}

func property(name, value string) tag {
	return tag{element: "meta", key: "property", keyVal: name, attr: "content", value: value}
}

// catalog lists every tag managed for m, including those with an empty value;
// empty tags are removed from the document rather than rendered.
func catalog(m seo.Metadata, opts Options) []tag {
	opts = opts.withDefaults()
	siteName := opts.SiteName
	if m.Degraded {
		siteName = ""
	}
	tags := []tag{
		{element: "title", value: m.Title},
		meta("description", m.Description),
		meta("keywords", strings.Join(m.Keywords, ", ")),
		meta("robots", m.Robots),
		{element: "link", key: "rel", keyVal: "canonical", attr: "href", value: m.Canonical},

		property("og:type", m.OGType),
		property("og:title", m.OGTitle),
		property("og:description", m.OGDescription),
		property("og:image", m.OGImage),
		property("og:url", m.OGURL),
		property("og:site_name", siteName),

		meta("twitter:card", m.TwitterCard),
		meta("twitter:title", m.TwitterTitle),
		meta("twitter:description", m.TwitterDescription),
		meta("twitter:image", m.TwitterImage),

		meta("geo.region", opts.Geo.Region),
		meta("geo.placename", opts.Geo.PlaceName),
		meta("geo.position", geoPosition(opts.Geo, ";")),
		meta("ICBM", geoPosition(opts.Geo, ", ")),

		{element: "script", key: "type", keyVal: "application/ld+json", value: m.StructuredData},
	}
	return append(tags, extras(m, opts)...)
}

// extras are page-dependent tags. They are always listed so that a page that
// does not need one removes the copy a previous page left behind.
func extras(m seo.Metadata, opts Options) []tag {
	var author, copyright, revisit, language string
	if m.PageID == opts.HomePageID && !m.Degraded {
		author = opts.Author
		copyright = opts.Author
		revisit = "7 days"
		language = "English"
	}
	if m.Language != "" {
		language = languageName(m.Language)
	}

	var condition, specialty, audience string
	if m.Kind == seo.KindMedicalWebPage {
		condition = "Mental Health"
		specialty = "Psychiatry"
		audience = "Patients"
	}

	return []tag{
		meta("author", author),
		meta("copyright", copyright),
		meta("revisit-after", revisit),
		meta("language", language),
		{element: "meta", key: "http-equiv", keyVal: "Content-Language", attr: "content", value: m.Language},
		meta("medical.condition", condition),
		meta("medical.specialty", specialty),
		meta("audience", audience),
	}
}

func geoPosition(g seo.Geo, sep string) string {
	if g.Latitude == "" || g.Longitude == "" {
		return ""
	}
	return g.Latitude + sep + g.Longitude
}

var languageNames = map[string]string{
	"en":    "English",
	"zh":    "Chinese",
	"zh-cn": "Chinese",
	"zh-tw": "Chinese",
	"es":    "Spanish",
}

func languageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// htmlLang is the value of <html lang> for m.
func htmlLang(m seo.Metadata, opts Options) string {
	if m.Language != "" {
		return m.Language
	}
	return opts.withDefaults().DefaultLanguage
}
