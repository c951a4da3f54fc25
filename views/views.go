// Package views provides the default admin and error pages for a clinicseo
// server. Pages are html/template files embedded in the binary and exposed as
// templ components, so a deployment can swap any of them for its own.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/clinicseo"
	"github.com/eringen/clinicseo/head"
	"github.com/eringen/clinicseo/seo"
)

//go:embed templates/*.html
var files embed.FS

var tmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"join":     clinicseo.JoinKeywords,
	"priority": formatPriority,
	"kb":       func(n int) string { return strconv.Itoa((n+1023)/1024) + " KB" },
}).ParseFS(files, "templates/*.html"))

// Default returns the built-in view set.
func Default() clinicseo.ViewFuncs {
	return clinicseo.ViewFuncs{
		AdminLogin:     Login,
		AdminDashboard: Dashboard,
		AdminForm:      Form,
		AdminImages:    Images,
		NotFound:       NotFound,
		ServerError:    ServerError,
		Shell:          Shell,
	}
}

func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

type loginData struct {
	ShowError bool
	CSRF      string
}

// Login renders the admin login form.
func Login(showError bool, csrf string) templ.Component {
	return page("login.html", loginData{ShowError: showError, CSRF: csrf})
}

type dashboardData struct {
	Pages   []clinicseo.PageStatus
	Message string
	CSRF    string
}

// Dashboard lists every routed page with its resolved title and override state.
func Dashboard(pages []clinicseo.PageStatus, message, csrf string) templ.Component {
	return page("dashboard.html", dashboardData{Pages: pages, Message: message, CSRF: csrf})
}

type formData struct {
	PageID   string
	Override seo.PageOverride
	Preview  seo.Metadata
	CSRF     string

	SchemaType string
	SchemaName string
	Categories []string
	Freqs      []string
}

// Form renders the override editor for one page next to its current metadata.
func Form(pageID string, o seo.PageOverride, preview seo.Metadata, csrf string) templ.Component {
	d := formData{
		PageID:     pageID,
		Override:   o,
		Preview:    preview,
		CSRF:       csrf,
		Categories: []string{"", "general", "organization", "medical"},
		Freqs:      []string{"", "always", "hourly", "daily", "weekly", "monthly", "yearly", "never"},
	}
	if o.Schema != nil {
		d.SchemaType, d.SchemaName = o.Schema.Type, o.Schema.Name
	}
	return page("form.html", d)
}

type imagesData struct {
	Images []clinicseo.ShareImage
	CSRF   string
}

// Images lists the uploaded share images with an upload form.
func Images(images []clinicseo.ShareImage, csrf string) templ.Component {
	return page("images.html", imagesData{Images: images, CSRF: csrf})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return page("notfound.html", nil)
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return page("error.html", nil)
}

// Shell renders a bare document carrying the page head, used when the
// application shell is not deployed.
func Shell(m seo.Metadata, opts head.Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := m.Language
		if lang == "" {
			lang = "en"
		}
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="`+template.HTMLEscapeString(lang)+`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`); err != nil {
			return err
		}
		if err := head.Write(w, m, opts); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</head><body><div id="root"></div></body></html>`)
		return err
	})
}

func formatPriority(p float64) string {
	if p == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(p, 'f', 2, 64), "0"), ".")
}
