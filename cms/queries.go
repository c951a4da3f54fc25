package cms

import (
	"context"
	"errors"
	"time"
)

const (
	qPages        = `*[_type == "page"] | order(title asc)`
	qPageBySlug   = `*[_type == "page" && slug.current == $slug][0]`
	qServices     = `*[_type == "service"] | order(order asc, title asc)`
	qServiceSlug  = `*[_type == "service" && slug.current == $slug][0]`
	qPracticeInfo = `*[_type == "practiceInfo"][0]`
	qStaff        = `*[_type == "staff"] | order(order asc)`
	qAnnouncement = `*[_type == "announcement" && published == true] | order(publishedAt desc)`
	qHomePage     = `*[_type == "homePage"][0]`
	qSEOByPage    = `*[_type == "seoSettings" && pageName == $page][0]{
  ...,
  "ogImageUrl": coalesce(ogImageUrl, ogImage.asset->url),
  "twitterImageUrl": coalesce(twitterImageUrl, twitterImage.asset->url)
}`
	qSEOAll = `*[_type == "seoSettings"] | order(pageName asc){
  ...,
  "ogImageUrl": coalesce(ogImageUrl, ogImage.asset->url),
  "twitterImageUrl": coalesce(twitterImageUrl, twitterImage.asset->url)
}`
	qGlobalSettings = `*[_type == "globalSettings"][0]{
  ...,
  "defaultImageUrl": defaultImage.asset->url,
  "physicianImageUrl": physicianImage.asset->url
}`
)

// Pages returns all pages ordered by title.
func (c *Client) Pages(ctx context.Context) ([]Page, error) {
	return list[Page](ctx, c, qPages, nil)
}

// PageBySlug returns the page with the given slug.
func (c *Client) PageBySlug(ctx context.Context, slug string) (*Page, error) {
	return one[Page](ctx, c, qPageBySlug, map[string]any{"slug": slug})
}

// Services returns all services ordered by position, then title.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	return list[Service](ctx, c, qServices, nil)
}

// ServiceBySlug returns the service with the given slug.
func (c *Client) ServiceBySlug(ctx context.Context, slug string) (*Service, error) {
	return one[Service](ctx, c, qServiceSlug, map[string]any{"slug": slug})
}

// PracticeInfo returns the practice information document.
func (c *Client) PracticeInfo(ctx context.Context) (*PracticeInfo, error) {
	return one[PracticeInfo](ctx, c, qPracticeInfo, nil)
}

// StaffProfiles returns all staff profiles ordered by position.
func (c *Client) StaffProfiles(ctx context.Context) ([]Staff, error) {
	return list[Staff](ctx, c, qStaff, nil)
}

// Announcements returns published announcements, newest first.
func (c *Client) Announcements(ctx context.Context) ([]Announcement, error) {
	return list[Announcement](ctx, c, qAnnouncement, nil)
}

// HomePage returns the home page document.
func (c *Client) HomePage(ctx context.Context) (*HomePage, error) {
	return one[HomePage](ctx, c, qHomePage, nil)
}

// SEOSettings returns the SEO document for a page id.
func (c *Client) SEOSettings(ctx context.Context, pageName string) (*SEOSettings, error) {
	return one[SEOSettings](ctx, c, qSEOByPage, map[string]any{"page": pageName})
}

// AllSEOSettings returns every SEO document.
func (c *Client) AllSEOSettings(ctx context.Context) ([]SEOSettings, error) {
	return list[SEOSettings](ctx, c, qSEOAll, nil)
}

// GlobalSettings returns the site-wide settings document.
func (c *Client) GlobalSettings(ctx context.Context) (*GlobalSettingsDoc, error) {
	return one[GlobalSettingsDoc](ctx, c, qGlobalSettings, nil)
}

// ServicesByCategory returns the active services in category.
func (c *Client) ServicesByCategory(ctx context.Context, category string) ([]Service, error) {
	all, err := c.Services(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Service, 0, len(all))
	for _, s := range all {
		if s.Category == category && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

// ActiveStaff returns the staff profiles marked active.
func (c *Client) ActiveStaff(ctx context.Context) ([]Staff, error) {
	all, err := c.StaffProfiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Staff, 0, len(all))
	for _, s := range all {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

// HomepageAnnouncements returns published, unexpired announcements flagged
// for the home page.
func (c *Client) HomepageAnnouncements(ctx context.Context, now time.Time) ([]Announcement, error) {
	all, err := c.Announcements(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Announcement, 0, len(all))
	for _, a := range all {
		if a.Published && a.ShowOnHomepage && !a.Expired(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func one[T any](ctx context.Context, c *Client, q string, params map[string]any) (*T, error) {
	var v T
	if err := c.Query(ctx, q, params, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func list[T any](ctx context.Context, c *Client, q string, params map[string]any) ([]T, error) {
	var v []T
	if err := c.Query(ctx, q, params, &v); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}
	if v == nil {
		v = []T{}
	}
	return v, nil
}
