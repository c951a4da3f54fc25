package clinicseo

import (
	"encoding/xml"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/clinicseo/seo"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

var changeFreqs = map[string]bool{
	"always": true, "hourly": true, "daily": true, "weekly": true,
	"monthly": true, "yearly": true, "never": true,
}

func (a *App) handleSitemap(c echo.Context) error {
	urls, err := a.sitemapURLs(c)
	if errors.Is(err, seo.ErrConfigurationMissing) {
		return c.String(http.StatusServiceUnavailable, "settings unavailable")
	}
	if err != nil {
		return err
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

// sitemapURLs lists every routed page that may be indexed, in route order.
// A page is listed at its override canonical when it sets one, otherwise at
// its route path.
func (a *App) sitemapURLs(c echo.Context) ([]sitemapURL, error) {
	ctx := c.Request().Context()
	seen := make(map[string]bool)
	var urls []sitemapURL
	for _, r := range a.Config.Routes {
		snap, err := a.Settings.Snapshot(ctx, r.PageID)
		if err != nil {
			return nil, err
		}
		m, _, err := a.Memo.Resolve(snap)
		if err != nil {
			return nil, err
		}
		if strings.Contains(m.Robots, "noindex") {
			continue
		}
		loc := seo.JoinURL(snap.Global.SiteURL, r.Path)
		if snap.Override != nil && snap.Override.CanonicalPath != "" {
			loc = m.Canonical
		}
		if seen[loc] {
			continue
		}
		seen[loc] = true
		urls = append(urls, sitemapEntry(loc, r.PageID, snap.Override))
	}
	return urls, nil
}

func sitemapEntry(loc, pageID string, o *seo.PageOverride) sitemapURL {
	priority, freq := 0.5, "monthly"
	if pageID == "home" {
		priority, freq = 1.0, "weekly"
	}
	if o != nil {
		if o.Priority > 0 && o.Priority <= 1 {
			priority = o.Priority
		}
		if changeFreqs[o.ChangeFreq] {
			freq = o.ChangeFreq
		}
	}
	return sitemapURL{
		Loc:        loc,
		ChangeFreq: freq,
		Priority:   formatSitemapPriority(priority),
	}
}

// formatSitemapPriority keeps at least one decimal place and never rounds
// an entered value such as 0.85.
func formatSitemapPriority(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
