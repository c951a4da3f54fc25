package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/clinicseo"
	"github.com/eringen/clinicseo/head"
	"github.com/eringen/clinicseo/seo"
)

func renderDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestLogin(t *testing.T) {
	doc := renderDoc(t, Login(true, "tok"))
	v, _ := doc.Find(`input[name="_csrf"]`).Attr("value")
	assert.Equal(t, "tok", v)
	assert.Equal(t, 1, doc.Find(".error").Length())

	doc = renderDoc(t, Login(false, "tok"))
	assert.Equal(t, 0, doc.Find(".error").Length())
}

func TestDashboard(t *testing.T) {
	pages := []clinicseo.PageStatus{
		{Route: clinicseo.Route{Path: "/", PageID: "home"}, Title: "Doe Psychiatry", Kind: seo.KindOrganizationGraph},
		{Route: clinicseo.Route{Path: "/about", PageID: "about"}, Title: "About <Dr. Doe>", HasOverride: true, UpdatedAt: "2026-01-02T03:04:05Z"},
	}
	doc := renderDoc(t, Dashboard(pages, "saved", "tok"))

	rows := doc.Find("tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "About <Dr. Doe>", rows.Eq(1).Find("td").Eq(1).Text())
	assert.Contains(t, rows.Eq(1).Text(), "edited 2026-01-02T03:04:05Z")
	href, _ := rows.Eq(0).Find(`a[href^="/admin/page/"]`).Attr("href")
	assert.Equal(t, "/admin/page/home/", href)
	assert.Equal(t, "saved", doc.Find(".msg").Text())
}

func TestFormPrefillsOverride(t *testing.T) {
	o := seo.PageOverride{
		Title:      `Adult "Psychiatry"`,
		Keywords:   []string{"adhd", "anxiety"},
		NoIndex:    true,
		Category:   seo.CategoryMedical,
		Priority:   0.8,
		ChangeFreq: "weekly",
		Schema:     &seo.SchemaHint{Type: "MedicalWebPage", Name: "Depression"},
	}
	preview := seo.Metadata{Title: "Adult Psychiatry", StructuredData: `{"@type":"MedicalWebPage"}`}
	doc := renderDoc(t, Form("adult-psychiatry", o, preview, "tok"))

	val := func(sel string) string {
		v, _ := doc.Find(sel).Attr("value")
		return v
	}
	assert.Equal(t, `Adult "Psychiatry"`, val("#title"))
	assert.Equal(t, "adhd, anxiety", val("#keywords"))
	assert.Equal(t, "0.8", val("#priority"))
	assert.Equal(t, "Depression", val("#schema_name"))
	_, checked := doc.Find(`input[name="no_index"]`).Attr("checked")
	assert.True(t, checked)
	assert.Equal(t, "medical", doc.Find("#category option[selected]").AttrOr("value", ""))
	assert.Equal(t, "weekly", doc.Find("#change_freq option[selected]").AttrOr("value", ""))
	assert.Equal(t, "/admin/page/adult-psychiatry/", doc.Find("form#override").AttrOr("action", ""))
	assert.Equal(t, `{"@type":"MedicalWebPage"}`, doc.Find("#preview").Text())
}

func TestImages(t *testing.T) {
	doc := renderDoc(t, Images(nil, "tok"))
	assert.Contains(t, doc.Find("tbody").Text(), "No images yet.")

	doc = renderDoc(t, Images([]clinicseo.ShareImage{{Filename: "office.jpg", Width: 1200, Height: 630, Size: 2048}}, "tok"))
	assert.Equal(t, "/uploads/office.jpg", doc.Find("tbody img").AttrOr("src", ""))
	assert.Contains(t, doc.Find("tbody").Text(), "2 KB")
}

func TestShellCarriesHead(t *testing.T) {
	m, err := seo.Resolve("about", &seo.GlobalSettings{SiteName: "Doe Psychiatry", SiteURL: "https://example-practice.com"}, &seo.PageOverride{Title: "About", Language: "zh"})
	require.NoError(t, err)
	doc := renderDoc(t, Shell(m, head.Options{SiteName: "Doe Psychiatry"}))

	assert.Equal(t, "About", doc.Find("title").Text())
	assert.Equal(t, "zh", doc.Find("html").AttrOr("lang", ""))
	assert.Equal(t, 1, doc.Find("#root").Length())
	assert.Equal(t, 1, doc.Find(`script[type="application/ld+json"]`).Length())
}

func TestErrorPages(t *testing.T) {
	assert.True(t, strings.Contains(renderDoc(t, NotFound()).Find("h1").Text(), "not found"))
	assert.Equal(t, "Something went wrong", renderDoc(t, ServerError()).Find("h1").Text())
}

func TestDefaultIsComplete(t *testing.T) {
	v := Default()
	assert.NotNil(t, v.AdminLogin)
	assert.NotNil(t, v.AdminDashboard)
	assert.NotNil(t, v.AdminForm)
	assert.NotNil(t, v.AdminImages)
	assert.NotNil(t, v.NotFound)
	assert.NotNil(t, v.ServerError)
	assert.NotNil(t, v.Shell)
}
