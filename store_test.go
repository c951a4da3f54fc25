package clinicseo

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/eringen/clinicseo/seo"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "seo.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetOverride(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	o := seo.PageOverride{
		Title:    "Adult Psychiatry",
		Keywords: []string{"adult psychiatry", "medication management"},
		NoIndex:  true,
		Schema:   &seo.SchemaHint{Name: "Depression"},
		Category: seo.CategoryMedical,
		Priority: 0.9,
	}
	if err := s.SaveOverride(ctx, "adult-psychiatry", o); err != nil {
		t.Fatalf("SaveOverride failed: %v", err)
	}

	rec, err := s.GetOverride(ctx, "adult-psychiatry")
	if err != nil {
		t.Fatalf("GetOverride failed: %v", err)
	}
	if rec.Override.Title != o.Title {
		t.Errorf("Title = %q, want %q", rec.Override.Title, o.Title)
	}
	if len(rec.Override.Keywords) != 2 {
		t.Errorf("Keywords = %v, want 2 entries", rec.Override.Keywords)
	}
	if !rec.Override.NoIndex {
		t.Error("NoIndex should be true")
	}
	if rec.Override.Schema == nil || rec.Override.Schema.Name != "Depression" {
		t.Errorf("Schema = %+v, want name Depression", rec.Override.Schema)
	}
	if rec.Override.Priority != 0.9 {
		t.Errorf("Priority = %v, want 0.9", rec.Override.Priority)
	}
	if rec.UpdatedAt == "" {
		t.Error("UpdatedAt should be set")
	}
}

func TestSaveOverrideReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveOverride(ctx, "about", seo.PageOverride{Title: "v1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveOverride(ctx, "about", seo.PageOverride{Title: "v2"}); err != nil {
		t.Fatal(err)
	}
	recs, err := s.ListOverrides(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d overrides, want 1", len(recs))
	}
	if recs[0].Override.Title != "v2" {
		t.Errorf("Title = %q, want %q", recs[0].Override.Title, "v2")
	}
}

func TestStoreAsOverrideSource(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.PageOverride(ctx, "contact")
	if !errors.Is(err, seo.ErrOverrideNotFound) {
		t.Fatalf("err = %v, want ErrOverrideNotFound", err)
	}

	if err := s.SaveOverride(ctx, "contact", seo.PageOverride{Title: "Contact"}); err != nil {
		t.Fatal(err)
	}
	o, err := s.PageOverride(ctx, "contact")
	if err != nil {
		t.Fatal(err)
	}
	if o.Title != "Contact" {
		t.Errorf("Title = %q, want %q", o.Title, "Contact")
	}
}

func TestDeleteOverride(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SaveOverride(ctx, "portal", seo.PageOverride{NoIndex: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteOverride(ctx, "portal"); err != nil {
		t.Fatalf("DeleteOverride failed: %v", err)
	}
	if _, err := s.GetOverride(ctx, "portal"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestImages(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	img := ShareImage{Filename: "office.jpg", OriginalName: "Office.PNG", Width: 1200, Height: 630, Size: 4096, UploadedAt: "2024-05-01T10:00:00Z"}
	if err := s.SaveImage(ctx, img); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	exists, err := s.ImageExists(ctx, "office.jpg")
	if err != nil || !exists {
		t.Fatalf("ImageExists = %v, %v; want true", exists, err)
	}

	images, err := s.ListImages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 1 || images[0] != img {
		t.Errorf("ListImages = %+v, want [%+v]", images, img)
	}
	if got := images[0].URL(); got != "/uploads/office.jpg" {
		t.Errorf("URL() = %q, want %q", got, "/uploads/office.jpg")
	}

	if err := s.DeleteImage(ctx, "office.jpg"); err != nil {
		t.Fatal(err)
	}
	if exists, _ := s.ImageExists(ctx, "office.jpg"); exists {
		t.Error("image should be gone after delete")
	}
}
