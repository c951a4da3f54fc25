package seo

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// OverrideSource looks up the override for a page id. Implementations return
// ErrOverrideNotFound when they hold nothing for the page.
type OverrideSource interface {
	PageOverride(ctx context.Context, pageID string) (*PageOverride, error)
}

// Source provides both the global settings record and page overrides.
type Source interface {
	OverrideSource
	GlobalSettings(ctx context.Context) (*GlobalSettings, error)
}

// Layered serves global settings from Primary and consults the overlay
// override sources, in order, before falling back to Primary for overrides.
type Layered struct {
	Primary  Source
	Overlays []OverrideSource
}

// NewLayered builds a Layered source.
func NewLayered(primary Source, overlays ...OverrideSource) *Layered {
	return &Layered{Primary: primary, Overlays: overlays}
}

// GlobalSettings implements Source.
func (l *Layered) GlobalSettings(ctx context.Context) (*GlobalSettings, error) {
	return l.Primary.GlobalSettings(ctx)
}

// PageOverride implements Source. The first source holding an override wins.
func (l *Layered) PageOverride(ctx context.Context, pageID string) (*PageOverride, error) {
	for _, s := range l.Overlays {
		o, err := s.PageOverride(ctx, pageID)
		if err == nil && o != nil {
			return o, nil
		}
		if err != nil && !errors.Is(err, ErrOverrideNotFound) {
			return nil, err
		}
	}
	return l.Primary.PageOverride(ctx, pageID)
}

// FetchGlobal reads the global settings from src and classifies failures:
// a missing record is ErrConfigurationMissing, anything else a FetchError.
func FetchGlobal(ctx context.Context, src Source) (*GlobalSettings, error) {
	g, err := src.GlobalSettings(ctx)
	switch {
	case err == nil && g == nil:
		return nil, ErrConfigurationMissing
	case err == nil:
		return g, nil
	case errors.Is(err, ErrConfigurationMissing), IsFetchFailure(err):
		return nil, err
	default:
		return nil, &FetchError{Store: StoreGlobal, Err: err}
	}
}

// FetchOverride reads the override for pageID. A missing override is not an
// error and yields (nil, nil).
func FetchOverride(ctx context.Context, src OverrideSource, pageID string) (*PageOverride, error) {
	o, err := src.PageOverride(ctx, pageID)
	switch {
	case err == nil:
		return o, nil
	case errors.Is(err, ErrOverrideNotFound):
		return nil, nil
	case IsFetchFailure(err):
		return nil, err
	default:
		return nil, &FetchError{Store: StoreOverride, PageID: pageID, Err: err}
	}
}

// Loader fetches the inputs of one resolution concurrently.
type Loader struct {
	src Source
}

// NewLoader creates a Loader over src.
func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Load fetches global settings and the override for pageID in parallel.
// A failure of either cancels the other.
func (l *Loader) Load(ctx context.Context, pageID string) (Snapshot, error) {
	var (
		global   *GlobalSettings
		override *PageOverride
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		global, err = FetchGlobal(gctx, l.src)
		return err
	})
	g.Go(func() error {
		var err error
		override, err = FetchOverride(gctx, l.src, pageID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{PageID: pageID, Global: global, Override: override}, nil
}

// Resolve loads and resolves pageID in one step.
func (l *Loader) Resolve(ctx context.Context, pageID string) (Metadata, error) {
	snap, err := l.Load(ctx, pageID)
	if err != nil {
		return Metadata{}, err
	}
	return Resolve(snap.PageID, snap.Global, snap.Override)
}
