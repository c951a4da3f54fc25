package clinicseo

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/eringen/clinicseo/seo"
)

// Override fields are plain text; markup is stripped and the escaping the
// policy applies is undone so values are stored as typed.
var textPolicy = bluemonday.StrictPolicy()

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("failed admin login", zap.String("remote_ip", ip))
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// routedPage returns the :page param when it names a routed page.
func (a *App) routedPage(c echo.Context) (string, error) {
	pageID := c.Param("page")
	for _, r := range a.Config.Routes {
		if r.PageID == pageID {
			return pageID, nil
		}
	}
	return "", echo.ErrNotFound
}

func (a *App) handleAdminPage(c echo.Context) error {
	pageID, err := a.routedPage(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	var o seo.PageOverride
	rec, err := a.Store.GetOverride(ctx, pageID)
	switch {
	case err == nil:
		o = rec.Override
	case errors.Is(err, sql.ErrNoRows):
	default:
		return err
	}
	preview, _ := a.Resolve(ctx, pageID)
	return Render(c, a.Views.AdminForm(pageID, o, preview, CsrfToken(c)))
}

func (a *App) handleAdminSave(c echo.Context) error {
	pageID, err := a.routedPage(c)
	if err != nil {
		return err
	}
	o, err := overrideFromForm(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(err.Error()))
	}
	if err := a.Store.SaveOverride(c.Request().Context(), pageID, o); err != nil {
		return err
	}
	a.invalidate(pageID)
	a.Logger.Info("override saved", zap.String("page_id", pageID))
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	pageID, err := a.routedPage(c)
	if err != nil {
		return err
	}
	if err := a.Store.DeleteOverride(c.Request().Context(), pageID); err != nil {
		return err
	}
	a.invalidate(pageID)
	a.Logger.Info("override deleted", zap.String("page_id", pageID))
	return a.renderAdminDashboard(c, "deleted")
}

// handleAdminPreview resolves the submitted, unsaved override against the
// current global settings.
func (a *App) handleAdminPreview(c echo.Context) error {
	pageID, err := a.routedPage(c)
	if err != nil {
		return err
	}
	o, err := overrideFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	g, _, err := a.Settings.Global(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	}
	m, err := seo.Resolve(pageID, g, &o)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (a *App) invalidate(pageID string) {
	a.Settings.Invalidate(pageID)
	a.Memo.Forget(pageID)
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	ctx := c.Request().Context()
	recs, err := a.Store.ListOverrides(ctx)
	if err != nil {
		return err
	}
	stored := make(map[string]OverrideRecord, len(recs))
	for _, r := range recs {
		stored[r.PageID] = r
	}
	pages := make([]PageStatus, 0, len(a.Config.Routes))
	for _, r := range a.Config.Routes {
		ps := PageStatus{Route: r}
		if rec, ok := stored[r.PageID]; ok {
			ps.HasOverride = true
			ps.UpdatedAt = rec.UpdatedAt
		}
		if m, err := a.Resolve(ctx, r.PageID); err == nil {
			ps.Title, ps.Robots, ps.Kind = m.Title, m.Robots, m.Kind
		}
		pages = append(pages, ps)
	}
	return Render(c, a.Views.AdminDashboard(pages, msg, CsrfToken(c)))
}

// overrideFromForm reads and validates an override from the admin form.
func overrideFromForm(c echo.Context) (seo.PageOverride, error) {
	text := func(name string) string {
		return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(c.FormValue(name))))
	}
	o := seo.PageOverride{
		Title:              text("title"),
		Description:        text("description"),
		Keywords:           FilterEmpty(strings.Split(text("keywords"), ",")),
		CanonicalPath:      text("canonical"),
		OGType:             text("og_type"),
		OGTitle:            text("og_title"),
		OGDescription:      text("og_description"),
		OGImage:            text("og_image"),
		TwitterCard:        text("twitter_card"),
		TwitterTitle:       text("twitter_title"),
		TwitterDescription: text("twitter_description"),
		TwitterImage:       text("twitter_image"),
		NoIndex:            c.FormValue("no_index") != "",
		Category:           seo.PageCategory(text("category")),
		Language:           text("language"),
		ChangeFreq:         text("change_freq"),
	}
	if t, n := text("schema_type"), text("schema_name"); t != "" || n != "" {
		o.Schema = &seo.SchemaHint{Type: t, Name: n}
	}
	if !o.Category.Valid() {
		return o, fmt.Errorf("unknown category %q", o.Category)
	}
	if o.ChangeFreq != "" && !changeFreqs[o.ChangeFreq] {
		return o, fmt.Errorf("unknown change frequency %q", o.ChangeFreq)
	}
	if p := text("priority"); p != "" {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || v > 1 {
			return o, fmt.Errorf("priority must be between 0 and 1")
		}
		o.Priority = v
	}
	if o.CanonicalPath != "" && !strings.HasPrefix(o.CanonicalPath, "/") && !isAbsoluteURL(o.CanonicalPath) {
		return o, fmt.Errorf("canonical must be a path or absolute URL")
	}
	return o, nil
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
