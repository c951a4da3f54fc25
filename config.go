package clinicseo

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/clinicseo/cms"
	"github.com/eringen/clinicseo/filesource"
	"github.com/eringen/clinicseo/seo"
)

// Settings sources.
const (
	SourceStatic = "static"
	SourceCMS    = "cms"
)

// SiteConfig holds all configuration for a clinicseo server.
type SiteConfig struct {
	Name   string  // og:site_name (default: siteName from the global settings)
	URL    string  // Public URL used when the global settings carry none (default "http://localhost:3000")
	Author string  // author/copyright meta on the home page
	Geo    seo.Geo // geo meta tags when the global settings carry none

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path for admin overrides (default "data/seo.db")

	Source             string     // "static" or "cms" (default "static")
	GlobalSettingsPath string     // static global settings file (default "content/seo/global.json")
	PagesPath          string     // static page overrides file (default "content/seo/pages.json")
	CMS                cms.Config // used when Source is "cms"

	StaticDir string  // built SPA assets (default "build")
	ShellPath string  // SPA index.html (default StaticDir + "/index.html")
	Routes    []Route // path to page id table (default DefaultRoutes)

	UploadsDir string // share image uploads, served under /uploads/ (default "data/uploads")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	SettingsCacheTTL time.Duration // Settings cache TTL (default 5min)
	ResolveTimeout   time.Duration // Upper bound for one resolution (default 5s)
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/seo.db"
	}
	if c.Source == "" {
		c.Source = SourceStatic
	}
	if c.GlobalSettingsPath == "" {
		c.GlobalSettingsPath = "content/seo/global.json"
	}
	if c.PagesPath == "" {
		c.PagesPath = "content/seo/pages.json"
	}
	if c.StaticDir == "" {
		c.StaticDir = "build"
	}
	if c.ShellPath == "" {
		c.ShellPath = c.StaticDir + "/index.html"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "data/uploads"
	}
	if c.Routes == nil {
		c.Routes = DefaultRoutes()
	}
	if c.SettingsCacheTTL == 0 {
		c.SettingsCacheTTL = 5 * time.Minute
	}
	if c.ResolveTimeout == 0 {
		c.ResolveTimeout = 5 * time.Second
	}
}

// PrimarySource builds the settings source named by Source. The CMS client is
// returned as well when Source is "cms", and is nil otherwise.
func (c SiteConfig) PrimarySource(logger *zap.Logger) (seo.Source, *cms.Client, error) {
	c.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	switch c.Source {
	case SourceStatic:
		return filesource.New(c.GlobalSettingsPath, c.PagesPath), nil, nil
	case SourceCMS:
		if c.CMS.ProjectID == "" && c.CMS.BaseURL == "" {
			return nil, nil, fmt.Errorf("clinicseo: CMS project id is required")
		}
		client := cms.New(c.CMS, logger.Named("cms"))
		return cms.NewSource(client), client, nil
	default:
		return nil, nil, fmt.Errorf("clinicseo: unknown settings source %q", c.Source)
	}
}

// DefaultRoutes is the route table of the practice site.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", PageID: "home"},
		{Path: "/about", PageID: "about"},
		{Path: "/services", PageID: "services"},
		{Path: "/adult-psychiatry", PageID: "adult-psychiatry"},
		{Path: "/adult-therapy", PageID: "adult-therapy"},
		{Path: "/child-psychiatry", PageID: "child-psychiatry"},
		{Path: "/child-therapy", PageID: "child-therapy"},
		{Path: "/adhd-services", PageID: "adhd-services"},
		{Path: "/autism-services", PageID: "autism-services"},
		{Path: "/new-patient", PageID: "new-patient"},
		{Path: "/concierge", PageID: "concierge"},
		{Path: "/contact", PageID: "contact"},
		{Path: "/insurance", PageID: "insurance"},
		{Path: "/portal", PageID: "portal"},
		{Path: "/chinese", PageID: "chinese"},
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the catch-all page route is added.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithSource replaces the primary settings source built from the config.
func WithSource(src seo.Source) Option {
	return func(a *App) {
		a.primary = src
	}
}

// WithRegistry sets the Prometheus registry metrics are registered on
// (default: a fresh registry per App).
func WithRegistry(r *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = r
	}
}
