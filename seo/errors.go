package seo

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing is returned when no global settings are available.
	// Callers must not render partial meta tags; see Fallback.
	ErrConfigurationMissing = errors.New("seo: global settings missing")

	// ErrOverrideNotFound is returned by sources that hold no override for a
	// page. It is the normal path for pages without custom SEO.
	ErrOverrideNotFound = errors.New("seo: page override not found")
)

// Store names which collaborator a FetchError came from.
type Store string

const (
	StoreGlobal   Store = "global"
	StoreOverride Store = "override"
)

// FetchError reports a network or backend failure while fetching settings.
// The resolver never retries; the caller decides whether to retry or degrade.
type FetchError struct {
	Store  Store
	PageID string
	Err    error
}

func (e *FetchError) Error() string {
	if e.PageID != "" {
		return fmt.Sprintf("seo: fetch %s settings for %q: %v", e.Store, e.PageID, e.Err)
	}
	return fmt.Sprintf("seo: fetch %s settings: %v", e.Store, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchFailure reports whether err is (or wraps) a FetchError.
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
