// Package filesource serves SEO settings from static files: one global
// settings file and one file mapping page ids to overrides. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON. Files are re-read
// when their modification time changes.
package filesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/clinicseo/seo"
)

// Source implements seo.Source over two files.
type Source struct {
	globalPath string
	pagesPath  string

	mu        sync.Mutex
	global    *seo.GlobalSettings
	globalMod time.Time
	pages     map[string]*seo.PageOverride
	pagesMod  time.Time
}

// New creates a Source. pagesPath may be empty when no overrides exist.
func New(globalPath, pagesPath string) *Source {
	return &Source{globalPath: globalPath, pagesPath: pagesPath}
}

// GlobalSettings implements seo.Source. A missing file is reported as
// seo.ErrConfigurationMissing.
func (s *Source) GlobalSettings(ctx context.Context) (*seo.GlobalSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refreshGlobal(); err != nil {
		return nil, err
	}
	if s.global == nil {
		return nil, seo.ErrConfigurationMissing
	}
	g := *s.global
	return &g, nil
}

// PageOverride implements seo.Source.
func (s *Source) PageOverride(ctx context.Context, pageID string) (*seo.PageOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refreshPages(); err != nil {
		return nil, err
	}
	o, ok := s.pages[pageID]
	if !ok || o == nil {
		return nil, seo.ErrOverrideNotFound
	}
	cp := *o
	return &cp, nil
}

// PageIDs returns the ids of all pages that have an override.
func (s *Source) PageIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refreshPages(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.pages))
	for id := range s.pages {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Source) refreshGlobal() error {
	mod, err := modTime(s.globalPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.global = nil
		return nil
	}
	if err != nil {
		return err
	}
	if s.global != nil && mod.Equal(s.globalMod) {
		return nil
	}
	var g seo.GlobalSettings
	if err := decodeFile(s.globalPath, &g); err != nil {
		return err
	}
	s.global = &g
	s.globalMod = mod
	return nil
}

func (s *Source) refreshPages() error {
	if s.pagesPath == "" {
		return nil
	}
	mod, err := modTime(s.pagesPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.pages = nil
		return nil
	}
	if err != nil {
		return err
	}
	if s.pages != nil && mod.Equal(s.pagesMod) {
		return nil
	}
	pages := make(map[string]*seo.PageOverride)
	if err := decodeFile(s.pagesPath, &pages); err != nil {
		return err
	}
	for id, o := range pages {
		if o != nil && !o.Category.Valid() {
			return fmt.Errorf("%s: page %q: unknown category %q", s.pagesPath, id, o.Category)
		}
	}
	s.pages = pages
	s.pagesMod = mod
	return nil
}

func modTime(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

func decodeFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	default:
		err = json.Unmarshal(b, v)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
