package clinicseo

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/clinicseo/cms"
)

// Content endpoints pass CMS documents through to the SPA. They exist only
// when the CMS is the settings source.

func (a *App) handleServices(c echo.Context) error {
	if a.CMS == nil {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	var (
		services []cms.Service
		err      error
	)
	if category := c.QueryParam("category"); category != "" {
		services, err = a.CMS.ServicesByCategory(ctx, category)
	} else {
		services, err = a.CMS.Services(ctx)
	}
	if err != nil {
		return a.contentError(c, err)
	}
	return c.JSON(http.StatusOK, services)
}

func (a *App) handleStaff(c echo.Context) error {
	if a.CMS == nil {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	var (
		staff []cms.Staff
		err   error
	)
	if c.QueryParam("all") != "" {
		staff, err = a.CMS.StaffProfiles(ctx)
	} else {
		staff, err = a.CMS.ActiveStaff(ctx)
	}
	if err != nil {
		return a.contentError(c, err)
	}
	return c.JSON(http.StatusOK, staff)
}

func (a *App) handleAnnouncements(c echo.Context) error {
	if a.CMS == nil {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	var (
		items []cms.Announcement
		err   error
	)
	if c.QueryParam("homepage") != "" {
		items, err = a.CMS.HomepageAnnouncements(ctx, time.Now())
	} else {
		items, err = a.CMS.Announcements(ctx)
	}
	if err != nil {
		return a.contentError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (a *App) handlePractice(c echo.Context) error {
	if a.CMS == nil {
		return echo.ErrNotFound
	}
	info, err := a.CMS.PracticeInfo(c.Request().Context())
	if err != nil {
		return a.contentError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (a *App) contentError(c echo.Context, err error) error {
	if errors.Is(err, cms.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	a.Logger.Error("cms content fetch failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	return c.JSON(http.StatusBadGateway, map[string]string{"error": "content unavailable"})
}
