package seo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type mapSource struct {
	global    *GlobalSettings
	globalErr error
	pages     map[string]*PageOverride
	pageErr   error
	calls     atomic.Int32
}

func (s *mapSource) GlobalSettings(ctx context.Context) (*GlobalSettings, error) {
	s.calls.Add(1)
	return s.global, s.globalErr
}

func (s *mapSource) PageOverride(ctx context.Context, pageID string) (*PageOverride, error) {
	s.calls.Add(1)
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	if o, ok := s.pages[pageID]; ok {
		return o, nil
	}
	return nil, ErrOverrideNotFound
}

func TestLayeredOverlayWins(t *testing.T) {
	primary := &mapSource{
		global: testGlobal(),
		pages: map[string]*PageOverride{
			"about":   {Title: "From primary"},
			"contact": {Title: "Contact primary"},
		},
	}
	overlay := &mapSource{pages: map[string]*PageOverride{"about": {Title: "From admin"}}}
	l := NewLayered(primary, overlay)

	o, err := l.PageOverride(context.Background(), "about")
	require.NoError(t, err)
	require.Equal(t, "From admin", o.Title)

	o, err = l.PageOverride(context.Background(), "contact")
	require.NoError(t, err)
	require.Equal(t, "Contact primary", o.Title)

	_, err = l.PageOverride(context.Background(), "insurance")
	require.ErrorIs(t, err, ErrOverrideNotFound)

	g, err := l.GlobalSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, primary.global, g)
}

func TestLayeredOverlayFailureSurfaces(t *testing.T) {
	boom := errors.New("disk I/O error")
	l := NewLayered(&mapSource{global: testGlobal()}, &mapSource{pageErr: boom})
	_, err := l.PageOverride(context.Background(), "about")
	require.ErrorIs(t, err, boom)
}

func TestLoaderClassifiesErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewLoader(&mapSource{}).Load(ctx, "home")
	require.ErrorIs(t, err, ErrConfigurationMissing)

	netErr := errors.New("connection refused")
	_, err = NewLoader(&mapSource{globalErr: netErr}).Load(ctx, "home")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, StoreGlobal, fe.Store)
	require.ErrorIs(t, err, netErr)

	_, err = NewLoader(&mapSource{global: testGlobal(), pageErr: netErr}).Load(ctx, "about")
	require.ErrorAs(t, err, &fe)
	require.Equal(t, StoreOverride, fe.Store)
	require.Equal(t, "about", fe.PageID)
	require.True(t, IsFetchFailure(err))
}

func TestLoaderMissingOverrideIsNotAnError(t *testing.T) {
	src := &mapSource{global: testGlobal()}
	snap, err := NewLoader(src).Load(context.Background(), "insurance")
	require.NoError(t, err)
	require.Nil(t, snap.Override)
	require.Equal(t, "insurance", snap.PageID)

	m, err := NewLoader(src).Resolve(context.Background(), "insurance")
	require.NoError(t, err)
	require.Equal(t, src.global.SiteName, m.Title)
}

func TestMemoReusesUntilGenerationChanges(t *testing.T) {
	memo := NewMemo()
	snap := Snapshot{PageID: "about", Global: testGlobal(), GlobalGeneration: 1, PageGeneration: 1}

	first, hit, err := memo.Resolve(snap)
	require.NoError(t, err)
	require.False(t, hit)

	again, hit, err := memo.Resolve(snap)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, first, again)

	snap.Override = &PageOverride{Title: "About Dr. Doe"}
	snap.PageGeneration = 2
	updated, hit, err := memo.Resolve(snap)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "About Dr. Doe", updated.Title)

	other := Snapshot{PageID: "contact", Global: snap.Global, GlobalGeneration: 1, PageGeneration: 2}
	_, hit, err = memo.Resolve(other)
	require.NoError(t, err)
	require.False(t, hit)

	memo.Forget("about")
	_, hit, err = memo.Resolve(snap)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestMemoPropagatesConfigurationMissing(t *testing.T) {
	_, _, err := NewMemo().Resolve(Snapshot{PageID: "home"})
	require.ErrorIs(t, err, ErrConfigurationMissing)
}
