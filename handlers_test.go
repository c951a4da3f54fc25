package clinicseo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/clinicseo/head"
	"github.com/eringen/clinicseo/seo"
)

const testShell = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>React App</title></head>
<body><div id="root"></div></body></html>`

func textView(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func testViews() ViewFuncs {
	return ViewFuncs{
		AdminLogin: func(showError bool, csrf string) templ.Component {
			return textView(fmt.Sprintf("login error=%v", showError))
		},
		AdminDashboard: func(pages []PageStatus, msg, csrf string) templ.Component {
			var b strings.Builder
			fmt.Fprintf(&b, "dashboard msg=%s\n", msg)
			for _, p := range pages {
				fmt.Fprintf(&b, "%s override=%v title=%s\n", p.Route.PageID, p.HasOverride, p.Title)
			}
			return textView(b.String())
		},
		AdminForm: func(pageID string, o seo.PageOverride, preview seo.Metadata, csrf string) templ.Component {
			return textView("form " + pageID + " " + preview.Title)
		},
		AdminImages: func(images []ShareImage, csrf string) templ.Component {
			return textView(fmt.Sprintf("images %d", len(images)))
		},
		NotFound:    func() templ.Component { return textView("not found") },
		ServerError: func() templ.Component { return textView("server error") },
		Shell: func(m seo.Metadata, opts head.Options) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				io.WriteString(w, "<html><head>")
				if err := head.Write(w, m, opts); err != nil {
					return err
				}
				_, err := io.WriteString(w, "</head><body></body></html>")
				return err
			})
		},
	}
}

func newTestApp(t *testing.T, src seo.Source, withShell bool) *App {
	t.Helper()
	dir := t.TempDir()
	static := filepath.Join(dir, "build")
	if err := os.MkdirAll(static, 0o755); err != nil {
		t.Fatal(err)
	}
	if withShell {
		if err := os.WriteFile(filepath.Join(static, "index.html"), []byte(testShell), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(static, "favicon.ico"), []byte("icon"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := New(SiteConfig{
		Name:          "Doe Psychiatry",
		DatabasePath:  filepath.Join(dir, "seo.db"),
		StaticDir:     static,
		UploadsDir:    filepath.Join(dir, "uploads"),
		AdminPassword: "hunter2",
		SessionSecret: "test-secret-test-secret-test-sec",
	}, testViews(), WithSource(src), WithRegistry(prometheus.NewRegistry()))
	if err := a.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string) *httptest.ResponseRecorder {
	return serve(a, httptest.NewRequest(http.MethodGet, target, nil))
}

func parseBody(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func titleOf(t *testing.T, body string) string {
	t.Helper()
	return parseBody(t, body).Find("title").Text()
}

func TestPageServesShellWithResolvedHead(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)

	rec := get(a, "/about")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	doc := parseBody(t, rec.Body.String())
	if got := doc.Find("title").Text(); got != "About Dr. Doe" {
		t.Errorf("title = %q, want %q", got, "About Dr. Doe")
	}
	if n := doc.Find("title").Length(); n != 1 {
		t.Errorf("%d title elements, want 1", n)
	}
	if got := doc.Find(`link[rel="canonical"]`).AttrOr("href", ""); got != "https://example-practice.com/about" {
		t.Errorf("canonical = %q", got)
	}
	if doc.Find("#root").Length() != 1 {
		t.Error("SPA root missing")
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestPageStructuredDataParses(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)

	tests := []struct {
		path  string
		check func(t *testing.T, data map[string]interface{})
	}{
		{"/", func(t *testing.T, data map[string]interface{}) {
			graph, ok := data["@graph"].([]interface{})
			if !ok || len(graph) != 3 {
				t.Errorf("@graph = %v, want 3 entries", data["@graph"])
			}
		}},
		{"/adult-psychiatry", func(t *testing.T, data map[string]interface{}) {
			if data["@type"] != "MedicalWebPage" {
				t.Errorf("@type = %v, want MedicalWebPage", data["@type"])
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(a, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			scripts := parseBody(t, rec.Body.String()).Find(`script[type="application/ld+json"]`)
			if scripts.Length() != 1 {
				t.Fatalf("%d ld+json scripts, want 1", scripts.Length())
			}
			var data map[string]interface{}
			if err := json.Unmarshal([]byte(scripts.Text()), &data); err != nil {
				t.Fatalf("structured data does not parse: %v\n%s", err, scripts.Text())
			}
			tt.check(t, data)
		})
	}
}

func TestPageNoIndex(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	body := get(a, "/portal").Body.String()
	if !strings.Contains(body, "noindex, nofollow") {
		t.Errorf("robots noindex missing:\n%s", body)
	}
}

func TestPageWithoutShellUsesBuiltInShell(t *testing.T) {
	a := newTestApp(t, newFakeSource(), false)
	rec := get(a, "/about")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := titleOf(t, rec.Body.String()); got != "About Dr. Doe" {
		t.Errorf("title = %q, want %q", got, "About Dr. Doe")
	}
}

func TestUnroutedPaths(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)

	rec := get(a, "/no-such-page")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.String() != "not found" {
		t.Errorf("body = %q, want not found view", rec.Body.String())
	}

	rec = get(a, "/favicon.ico")
	if rec.Code != http.StatusOK || rec.Body.String() != "icon" {
		t.Errorf("static file: status %d body %q", rec.Code, rec.Body.String())
	}

	if rec := get(a, "/index.html"); rec.Code != http.StatusNotFound {
		t.Errorf("/index.html status = %d, want 404", rec.Code)
	}
}

func TestPageConfigurationMissingRendersFallback(t *testing.T) {
	src := newFakeSource()
	src.global = nil
	a := newTestApp(t, src, true)

	doc := parseBody(t, get(a, "/about").Body.String())
	if got := doc.Find("title").Text(); got != "Doe Psychiatry" {
		t.Errorf("title = %q, want %q", got, "Doe Psychiatry")
	}
	if doc.Find(`meta[property^="og:"]`).Length() != 0 {
		t.Error("degraded metadata must not emit social tags")
	}
}

func TestPageFetchFailureServesBareShell(t *testing.T) {
	src := newFakeSource()
	src.err = &seo.FetchError{Store: seo.StoreGlobal, Err: errors.New("connection refused")}
	a := newTestApp(t, src, true)

	rec := get(a, "/about")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != testShell {
		t.Errorf("expected untouched shell, got:\n%s", rec.Body.String())
	}
}

func TestSEOEndpoint(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)

	rec := get(a, "/api/seo/adult-psychiatry/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var m seo.Metadata
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.Title != "Adult Psychiatry" {
		t.Errorf("Title = %q, want %q", m.Title, "Adult Psychiatry")
	}
	if m.Kind != seo.KindMedicalWebPage {
		t.Errorf("Kind = %q, want %q", m.Kind, seo.KindMedicalWebPage)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Errorf("Cache-Control = %q", got)
	}

	// Missing trailing slash redirects.
	if rec := get(a, "/api/seo/about"); rec.Code != http.StatusMovedPermanently {
		t.Errorf("status = %d, want 301", rec.Code)
	}

	rec = get(a, "/api/seo/home/head/")
	if rec.Code != http.StatusOK || titleOf(t, rec.Body.String()) != "Doe Psychiatry" {
		t.Errorf("head fragment: status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestSEOEndpointFailures(t *testing.T) {
	src := newFakeSource()
	src.global = nil
	a := newTestApp(t, src, true)

	rec := get(a, "/api/seo/about/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var m seo.Metadata
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if !m.Degraded || m.Title != "Doe Psychiatry" {
		t.Errorf("unexpected fallback %+v", m)
	}

	failing := newFakeSource()
	failing.err = errors.New("boom")
	b := newTestApp(t, failing, true)
	if rec := get(b, "/api/seo/about/"); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestSitemap(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)

	rec := get(a, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<loc>https://example-practice.com/</loc><changefreq>weekly</changefreq><priority>1.0</priority>",
		"<loc>https://example-practice.com/about</loc>",
		"<loc>https://example-practice.com/adult-psychiatry</loc><changefreq>weekly</changefreq><priority>0.9</priority>",
		"<loc>https://example-practice.com/contact</loc><changefreq>monthly</changefreq><priority>0.5</priority>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
	if strings.Contains(body, "/portal") {
		t.Error("noindex page listed in sitemap")
	}
	if n := strings.Count(body, "<url>"); n != len(DefaultRoutes())-1 {
		t.Errorf("sitemap has %d urls, want %d", n, len(DefaultRoutes())-1)
	}
}

func TestRobotsGenerated(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	body := get(a, "/robots.txt").Body.String()
	for _, want := range []string{"Disallow: /admin/", "Sitemap: https://example-practice.com/sitemap.xml"} {
		if !strings.Contains(body, want) {
			t.Errorf("robots.txt missing %q:\n%s", want, body)
		}
	}
}

func TestContentRequiresCMS(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	if rec := get(a, "/api/content/services/"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	if rec := get(a, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}

	get(a, "/about")
	get(a, "/about")
	body := get(a, "/metrics").Body.String()
	for _, want := range []string{
		`clinicseo_resolutions_total{kind="OrganizationGraph"} 2`,
		"clinicseo_memo_hits_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

// adminSession logs in and returns the cookies to send with admin requests
// plus the CSRF token.
func adminSession(t *testing.T, a *App) ([]*http.Cookie, string) {
	t.Helper()
	rec := get(a, "/admin/")
	if !strings.Contains(rec.Body.String(), "login") {
		t.Fatalf("expected login view, got %q", rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	var token string
	for _, c := range cookies {
		if c.Name == "_csrf" {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("no CSRF cookie")
	}

	rec = postForm(a, "/admin/login/", cookies, url.Values{"_csrf": {token}, "password": {"hunter2"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	return append(cookies, rec.Result().Cookies()...), token
}

func postForm(a *App, target string, cookies []*http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(a, req)
}

func TestAdminRequiresLogin(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	rec := get(a, "/admin/page/about/")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/" {
		t.Errorf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAdminRejectsMissingCSRF(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	rec := postForm(a, "/admin/login/", nil, url.Values{"password": {"hunter2"}})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestAdminWrongPassword(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	rec := get(a, "/admin/")
	cookies := rec.Result().Cookies()
	var token string
	for _, c := range cookies {
		if c.Name == "_csrf" {
			token = c.Value
		}
	}
	rec = postForm(a, "/admin/login/", cookies, url.Values{"_csrf": {token}, "password": {"nope"}})
	if rec.Code != http.StatusOK || rec.Body.String() != "login error=true" {
		t.Errorf("status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestAdminSaveOverrideUpdatesPage(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)

	// Prime the cache and memo with the source's override.
	if got := titleOf(t, get(a, "/about").Body.String()); got != "About Dr. Doe" {
		t.Fatalf("initial title = %q", got)
	}

	cookies, token := adminSession(t, a)
	rec := postForm(a, "/admin/page/about/", cookies, url.Values{
		"_csrf":       {token},
		"title":       {"Meet <b>Dr. Doe</b> & Team"},
		"description": {"Board-certified psychiatrist."},
		"keywords":    {"psychiatrist, , cambridge"},
		"category":    {"organization"},
		"priority":    {"0.8"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "about override=true title=Meet Dr. Doe & Team") {
		t.Errorf("dashboard does not show saved override:\n%s", rec.Body.String())
	}

	if got := titleOf(t, get(a, "/about").Body.String()); got != "Meet Dr. Doe & Team" {
		t.Errorf("title after save = %q", got)
	}

	rec = postForm(a, "/admin/page/about/", cookies, url.Values{"_csrf": {token}, "priority": {"3"}})
	if rec.Code != http.StatusSeeOther || !strings.Contains(rec.Header().Get("Location"), "msg=priority") {
		t.Errorf("invalid priority: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodDelete, "/admin/page/about/", nil)
	req.Header.Set("X-CSRF-Token", token)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	if rec := serve(a, req); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if got := titleOf(t, get(a, "/about").Body.String()); got != "About Dr. Doe" {
		t.Errorf("title after delete = %q", got)
	}
}

func TestAdminPreview(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	cookies, token := adminSession(t, a)

	rec := postForm(a, "/admin/page/contact/preview/", cookies, url.Values{
		"_csrf": {token},
		"title": {"Contact Us"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var m seo.Metadata
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.Title != "Contact Us" {
		t.Errorf("Title = %q, want %q", m.Title, "Contact Us")
	}
	if _, err := a.Store.GetOverride(context.Background(), "contact"); err == nil {
		t.Error("preview must not persist the override")
	}

	if rec := postForm(a, "/admin/page/unknown/preview/", cookies, url.Values{"_csrf": {token}}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown page status = %d, want 404", rec.Code)
	}
}

func TestPageID(t *testing.T) {
	a := newTestApp(t, newFakeSource(), true)
	tests := []struct {
		path string
		id   string
		ok   bool
	}{
		{"/", "home", true},
		{"/about", "about", true},
		{"/about/", "about", true},
		{"/chinese", "chinese", true},
		{"/blog", "", false},
	}
	for _, tt := range tests {
		id, ok := a.PageID(tt.path)
		if id != tt.id || ok != tt.ok {
			t.Errorf("PageID(%q) = %q, %v, want %q, %v", tt.path, id, ok, tt.id, tt.ok)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Office Photo.JPG", "office-photo-jpg"},
		{"  Dr. Doe -- headshot ", "dr-doe-headshot"},
		{"***", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
