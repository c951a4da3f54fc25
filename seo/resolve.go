package seo

import "strings"

const (
	defaultRobots      = "index, follow"
	noIndexRobots      = "noindex, nofollow"
	defaultOGType      = "website"
	defaultTwitterCard = "summary_large_image"
)

// Resolve merges global settings and an optional page override into the
// metadata for pageID. It is a pure function of its inputs.
//
// A nil global yields ErrConfigurationMissing. A nil override is the normal
// case and resolves to global defaults.
func Resolve(pageID string, global *GlobalSettings, override *PageOverride) (Metadata, error) {
	if global == nil {
		return Metadata{}, ErrConfigurationMissing
	}
	o := override
	if o == nil {
		o = &PageOverride{}
	}

	title := firstNonEmpty(o.Title, global.SiteName)
	description := firstNonEmpty(o.Description, global.SiteDescription)
	canonical := JoinURL(global.SiteURL, firstNonEmpty(o.CanonicalPath, "/"))
	ogImage := JoinURL(global.SiteURL, firstNonEmpty(o.OGImage, global.DefaultImage))
	twitterImage := ogImage
	if o.TwitterImage != "" {
		twitterImage = JoinURL(global.SiteURL, o.TwitterImage)
	}

	robots := firstNonEmpty(global.Robots, defaultRobots)
	if o.NoIndex {
		robots = noIndexRobots
	}

	ogTitle := firstNonEmpty(o.OGTitle, title)
	ogDescription := firstNonEmpty(o.OGDescription, description)

	m := Metadata{
		PageID:             pageID,
		Title:              title,
		Description:        description,
		Keywords:           resolveKeywords(o.Keywords, global.DefaultKeywords),
		Canonical:          canonical,
		OGType:             firstNonEmpty(o.OGType, defaultOGType),
		OGTitle:            ogTitle,
		OGDescription:      ogDescription,
		OGImage:            ogImage,
		OGURL:              canonical,
		TwitterCard:        firstNonEmpty(o.TwitterCard, global.Social.TwitterCardType, defaultTwitterCard),
		TwitterTitle:       firstNonEmpty(o.TwitterTitle, o.OGTitle, title),
		TwitterDescription: firstNonEmpty(o.TwitterDescription, o.OGDescription, description),
		TwitterImage:       twitterImage,
		Robots:             robots,
		Language:           o.Language,
	}

	kind := Classify(pageID, o.Category)
	m.Kind = kind
	m.StructuredData = StructuredData(kind, structuredInput{
		global:      global,
		override:    o,
		title:       title,
		description: description,
		canonical:   canonical,
		image:       ogImage,
	})
	return m, nil
}

// Fallback returns the minimal metadata a caller renders when Resolve fails
// with ErrConfigurationMissing: a title and nothing that could contradict it.
func Fallback(pageID, siteName string) Metadata {
	return Metadata{
		PageID:   pageID,
		Title:    siteName,
		Keywords: []string{},
		Robots:   defaultRobots,
		Degraded: true,
	}
}

// JoinURL prefixes p with base unless p is already an absolute URL.
// An empty p yields an empty string.
func JoinURL(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "//") {
		return p
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}

func resolveKeywords(override, defaults []string) []string {
	src := override
	if len(src) == 0 {
		src = defaults
	}
	out := make([]string, 0, len(src))
	for _, k := range src {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
