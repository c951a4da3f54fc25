package clinicseo

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/clinicseo/head"
	"github.com/eringen/clinicseo/seo"
)

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/static", filepath.Join(a.Config.StaticDir, "static"))
	e.Static("/uploads", a.Config.UploadsDir)
	e.GET("/healthz", handleHealth)
	e.GET("/metrics", a.metrics.handler())
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/announcements.xml", a.handleAnnouncementsFeed)

	// SEO API
	e.GET("/api/seo/:page/", a.handleSEO)
	e.GET("/api/seo/:page/head/", a.handleSEOHead)

	// CMS content passthrough
	e.GET("/api/content/services/", a.handleServices)
	e.GET("/api/content/staff/", a.handleStaff)
	e.GET("/api/content/announcements/", a.handleAnnouncements)
	e.GET("/api/content/practice/", a.handlePractice)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	admin := e.Group("/admin")
	admin.GET("/page/:page/", a.handleAdminPage, requireAdmin)
	admin.POST("/page/:page/", a.handleAdminSave, requireAdmin)
	admin.DELETE("/page/:page/", a.handleAdminDelete, requireAdmin)
	admin.POST("/page/:page/preview/", a.handleAdminPreview, requireAdmin)
	admin.GET("/images/", a.handleImageList, requireAdmin)
	admin.POST("/images/upload/", a.handleImageUpload, requireAdmin)
	admin.DELETE("/images/:filename/", a.handleImageDelete, requireAdmin)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handlePage serves a routed site page: the SPA shell with the page's head.
// Unrouted paths are served from the static directory when a file exists.
func (a *App) handlePage(c echo.Context) error {
	p := c.Request().URL.Path
	pageID, ok := a.PageID(p)
	if !ok {
		return a.serveStaticFile(c, p)
	}

	var buf bytes.Buffer
	err := a.RenderPage(c.Request().Context(), pageID, &buf)
	if seo.IsFetchFailure(err) {
		a.Logger.Warn("settings fetch failed, serving bare shell", zap.String("page_id", pageID), zap.Error(err))
		buf.Reset()
		err = a.renderBareShell(c, pageID, &buf)
	}
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// renderBareShell writes the shell without touching its head.
func (a *App) renderBareShell(c echo.Context, pageID string, buf *bytes.Buffer) error {
	if a.shell != nil {
		_, err := buf.Write(a.shell)
		return err
	}
	opts := a.headOptions(nil)
	return a.Views.Shell(seo.Fallback(pageID, opts.SiteName), opts).Render(c.Request().Context(), buf)
}

func (a *App) serveStaticFile(c echo.Context, p string) error {
	clean := path.Clean("/" + p)
	if clean == "/" || strings.HasPrefix(clean, "/index.html") {
		return echo.ErrNotFound
	}
	full := filepath.Join(a.Config.StaticDir, filepath.FromSlash(clean))
	fi, err := os.Stat(full)
	if err != nil || fi.IsDir() {
		return echo.ErrNotFound
	}
	return c.File(full)
}

func (a *App) handleSEO(c echo.Context) error {
	pageID := c.Param("page")
	m, opts, err := a.resolve(c.Request().Context(), pageID)
	switch {
	case errors.Is(err, seo.ErrConfigurationMissing):
		return c.JSON(http.StatusServiceUnavailable, seo.Fallback(pageID, opts.SiteName))
	case seo.IsFetchFailure(err):
		a.Logger.Error("settings fetch failed", zap.String("page_id", pageID), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "settings unavailable"})
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (a *App) handleSEOHead(c echo.Context) error {
	pageID := c.Param("page")
	m, opts, err := a.resolve(c.Request().Context(), pageID)
	switch {
	case errors.Is(err, seo.ErrConfigurationMissing):
		return RenderStatus(c, http.StatusServiceUnavailable, head.Component(seo.Fallback(pageID, opts.SiteName), opts))
	case seo.IsFetchFailure(err):
		return c.NoContent(http.StatusBadGateway)
	case err != nil:
		return err
	}
	return Render(c, head.Component(m, opts))
}

func (a *App) handleRobots(c echo.Context) error {
	file := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(file); err == nil {
		return c.File(file)
	}
	base := a.siteURL(c.Request().Context())
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: %s\n", seo.JoinURL(base, "/sitemap.xml"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
