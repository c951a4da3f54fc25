package clinicseo

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/clinicseo/cms"
	"github.com/eringen/clinicseo/seo"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// handleAnnouncementsFeed serves the published, unexpired announcements as
// RSS. It exists only when the CMS is the settings source.
func (a *App) handleAnnouncementsFeed(c echo.Context) error {
	if a.CMS == nil {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	all, err := a.CMS.Announcements(ctx)
	if err != nil {
		return a.contentError(c, err)
	}

	base := a.siteURL(ctx)
	now := time.Now()
	items := make([]rssItem, 0, len(all))
	for _, ann := range all {
		if ann.Expired(now) {
			continue
		}
		link := seo.JoinURL(base, "/#announcement-"+ann.ID)
		items = append(items, rssItem{
			Title:       ann.Title,
			Link:        link,
			Description: cms.PlainText(ann.Content),
			Category:    ann.Type,
			PubDate:     ann.PublishedAt.Format(time.RFC1123Z),
			GUID:        link,
		})
	}

	title := a.Config.Name
	description := ""
	if g, _, err := a.Settings.Global(ctx); err == nil {
		if title == "" {
			title = g.SiteName
		}
		description = g.SiteDescription
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       title,
			Link:        base,
			Description: description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
