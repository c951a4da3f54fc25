// Package clinicseo serves the practice website's single-page application
// with server-resolved SEO metadata in the head of every page. Page metadata
// is resolved from global site settings and per-page overrides held in static
// files or the headless CMS, with admin-edited overrides layered on top.
//
// Templates for the admin and error pages are supplied through ViewFuncs.
package clinicseo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/clinicseo/cms"
	"github.com/eringen/clinicseo/head"
	"github.com/eringen/clinicseo/seo"
)

// ViewFuncs holds the templ components the server renders for admin and
// error pages.
type ViewFuncs struct {
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(pages []PageStatus, message string, csrfToken string) templ.Component
	AdminForm      func(pageID string, o seo.PageOverride, preview seo.Metadata, csrfToken string) templ.Component
	AdminImages    func(images []ShareImage, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
	// Shell renders a minimal page when no SPA shell file exists.
	Shell func(m seo.Metadata, opts head.Options) templ.Component
}

// App wires together the settings sources, caches, store, handlers and
// middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Settings *SettingsCache
	Memo     *seo.Memo
	Logger   *zap.Logger
	Views    ViewFuncs
	CMS      *cms.Client // nil unless Source is "cms"

	primary      seo.Source
	registry     *prometheus.Registry
	metrics      *Metrics
	loginLimiter *LoginLimiter
	routes       map[string]string
	shell        []byte
	customRoutes []func(*App)
	ready        bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		Memo:   seo.NewMemo(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = zap.NewNop()
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	return a
}

// Setup opens the store, builds the settings sources and registers
// middleware and routes. Start calls it when needed.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("clinicseo: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("clinicseo: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("clinicseo: init store: %w", err)
	}
	a.Store = store

	if a.primary == nil {
		primary, client, err := a.Config.PrimarySource(a.Logger)
		if err != nil {
			return err
		}
		a.primary, a.CMS = primary, client
	}
	a.Settings = NewSettingsCache(seo.NewLayered(a.primary, a.Store), a.Config.SettingsCacheTTL, a.Logger)
	a.metrics = newMetrics(a.registry)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.routes = make(map[string]string, len(a.Config.Routes))
	for _, r := range a.Config.Routes {
		a.routes[r.Path] = r.PageID
	}
	shell, err := os.ReadFile(a.Config.ShellPath)
	switch {
	case err == nil:
		a.shell = shell
	case errors.Is(err, os.ErrNotExist):
		a.Logger.Warn("SPA shell not found, serving built-in shell", zap.String("path", a.Config.ShellPath))
	default:
		return fmt.Errorf("clinicseo: read shell: %w", err)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.Echo.GET("/*", a.handlePage)
	a.ready = true
	return nil
}

// Start sets the app up and starts the server. It blocks until the server
// stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("starting server",
		zap.String("addr", a.Config.Addr),
		zap.String("source", a.Config.Source),
		zap.Int("routes", len(a.Config.Routes)),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// Resolve returns the metadata for pageID through the settings cache and
// memo. Failures are returned unchanged: seo.ErrConfigurationMissing or a
// *seo.FetchError.
func (a *App) Resolve(ctx context.Context, pageID string) (seo.Metadata, error) {
	m, _, err := a.resolve(ctx, pageID)
	return m, err
}

func (a *App) resolve(ctx context.Context, pageID string) (seo.Metadata, head.Options, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.ResolveTimeout)
	defer cancel()

	snap, err := a.Settings.Snapshot(ctx, pageID)
	if err != nil {
		a.metrics.failure(err)
		return seo.Metadata{}, a.headOptions(nil), err
	}
	m, hit, err := a.Memo.Resolve(snap)
	if err != nil {
		a.metrics.failure(err)
		return seo.Metadata{}, a.headOptions(nil), err
	}
	a.metrics.observe(m, hit)
	return m, a.headOptions(snap.Global), nil
}

// headOptions merges the configured head values with the global settings.
func (a *App) headOptions(g *seo.GlobalSettings) head.Options {
	opts := head.Options{
		SiteName: a.Config.Name,
		Author:   a.Config.Author,
		Geo:      a.Config.Geo,
	}
	if g != nil {
		if opts.SiteName == "" {
			opts.SiteName = g.SiteName
		}
		if opts.Author == "" {
			opts.Author = g.Physician.Name
		}
		if g.Geo != (seo.Geo{}) {
			opts.Geo = g.Geo
		}
	}
	return opts
}

// siteURL returns the public base URL, preferring the global settings.
func (a *App) siteURL(ctx context.Context) string {
	if g, _, err := a.Settings.Global(ctx); err == nil && g.SiteURL != "" {
		return g.SiteURL
	}
	return a.Config.URL
}

// PageID returns the page id routed at path.
func (a *App) PageID(path string) (string, bool) {
	id, ok := a.routes[path]
	if !ok && len(path) > 1 && path[len(path)-1] == '/' {
		id, ok = a.routes[path[:len(path)-1]]
	}
	return id, ok
}

// RenderPage resolves pageID and writes the full document for it: the SPA
// shell with its head rewritten, or the built-in shell. Missing global
// settings render fallback metadata titled with the configured Name; without
// a Name the shell is served untouched.
func (a *App) RenderPage(ctx context.Context, pageID string, w io.Writer) error {
	m, opts, err := a.resolve(ctx, pageID)
	if errors.Is(err, seo.ErrConfigurationMissing) {
		a.metrics.fallbacks.Inc()
		if opts.SiteName == "" && a.shell != nil {
			_, err := w.Write(a.shell)
			return err
		}
		m = seo.Fallback(pageID, opts.SiteName)
	} else if err != nil {
		return err
	}
	if a.shell == nil {
		return a.Views.Shell(m, opts).Render(ctx, w)
	}
	return head.Rewrite(bytes.NewReader(a.shell), w, m, opts)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("clinicseo: required environment variable %s is not set", key)
	}
	return v
}
