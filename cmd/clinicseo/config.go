package main

import (
	"strconv"
	"time"

	"github.com/eringen/clinicseo"
	"github.com/eringen/clinicseo/cms"
	"github.com/eringen/clinicseo/seo"
)

// configFromEnv builds the site configuration from environment variables.
// Unset values keep the SiteConfig defaults. The admin secrets are not
// required here; serve checks them.
func configFromEnv() clinicseo.SiteConfig {
	return clinicseo.SiteConfig{
		Name:   clinicseo.EnvOr("SITE_NAME", ""),
		URL:    clinicseo.EnvOr("SITE_URL", ""),
		Author: clinicseo.EnvOr("SITE_AUTHOR", ""),
		Geo: seo.Geo{
			Region:    clinicseo.EnvOr("GEO_REGION", ""),
			PlaceName: clinicseo.EnvOr("GEO_PLACENAME", ""),
			Latitude:  clinicseo.EnvOr("GEO_LATITUDE", ""),
			Longitude: clinicseo.EnvOr("GEO_LONGITUDE", ""),
		},

		Addr:         clinicseo.EnvOr("ADDR", ""),
		DatabasePath: clinicseo.EnvOr("DATABASE_PATH", ""),

		Source:             clinicseo.EnvOr("SEO_SOURCE", ""),
		GlobalSettingsPath: clinicseo.EnvOr("SEO_GLOBAL_PATH", ""),
		PagesPath:          clinicseo.EnvOr("SEO_PAGES_PATH", ""),
		CMS: cms.Config{
			ProjectID:  clinicseo.EnvOr("CMS_PROJECT_ID", ""),
			Dataset:    clinicseo.EnvOr("CMS_DATASET", ""),
			APIVersion: clinicseo.EnvOr("CMS_API_VERSION", ""),
			Token:      clinicseo.EnvOr("CMS_TOKEN", ""),
			UseCDN:     envBool("CMS_USE_CDN"),
			RetryCount: envInt("CMS_RETRY_COUNT", 2),
			RetryWait:  envDuration("CMS_RETRY_WAIT", 200*time.Millisecond),
		},

		StaticDir:  clinicseo.EnvOr("STATIC_DIR", ""),
		ShellPath:  clinicseo.EnvOr("SHELL_PATH", ""),
		UploadsDir: clinicseo.EnvOr("UPLOADS_DIR", ""),

		AdminPassword: clinicseo.EnvOr("ADMIN_PASSWORD", ""),
		SessionSecret: clinicseo.EnvOr("ADMIN_SESSION_SECRET", ""),
		CookieSecure:  envBool("COOKIE_SECURE"),

		SettingsCacheTTL: envDuration("SETTINGS_CACHE_TTL", 0),
		ResolveTimeout:   envDuration("RESOLVE_TIMEOUT", 0),
	}
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(clinicseo.EnvOr(key, "false"))
	return b
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(clinicseo.EnvOr(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(clinicseo.EnvOr(key, ""))
	if err != nil {
		return fallback
	}
	return d
}
