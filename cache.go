package clinicseo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/clinicseo/seo"
)

const staleRetryInterval = 30 * time.Second

type cachedOverride struct {
	override *seo.PageOverride
	expires  time.Time
	gen      uint64
}

// SettingsCache is an in-memory TTL cache of the global settings and page
// overrides. Every loaded value carries a generation number, so resolved
// metadata computed from it can be reused until the value is reloaded.
//
// When a reload fails with a fetch error and a previous value exists, the
// previous value is served, the failure logged, and the next reload is
// deferred by the retry interval so that requests do not wait on a failing
// source.
type SettingsCache struct {
	src    seo.Source
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu            sync.RWMutex
	global        *seo.GlobalSettings
	globalExpires time.Time
	globalGen     uint64
	pages         map[string]cachedOverride
	nextGen       uint64

	group singleflight.Group
}

// NewSettingsCache creates a SettingsCache over src.
func NewSettingsCache(src seo.Source, ttl time.Duration, logger *zap.Logger) *SettingsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsCache{
		src:    src,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		pages:  make(map[string]cachedOverride),
	}
}

// Invalidate drops the cached override for pageID.
func (c *SettingsCache) Invalidate(pageID string) {
	c.mu.Lock()
	delete(c.pages, pageID)
	c.mu.Unlock()
}

// InvalidateAll drops every cached value.
func (c *SettingsCache) InvalidateAll() {
	c.mu.Lock()
	c.global = nil
	c.pages = make(map[string]cachedOverride)
	c.mu.Unlock()
}

// Snapshot returns the settings for pageID, loading stale entries from the
// source. Global settings and the override load concurrently.
func (c *SettingsCache) Snapshot(ctx context.Context, pageID string) (seo.Snapshot, error) {
	snap := seo.Snapshot{PageID: pageID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Global, snap.GlobalGeneration, err = c.Global(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Override, snap.PageGeneration, err = c.override(gctx, pageID)
		return err
	})
	if err := g.Wait(); err != nil {
		return seo.Snapshot{}, err
	}
	return snap, nil
}

// Global returns the global settings and their generation.
func (c *SettingsCache) Global(ctx context.Context) (*seo.GlobalSettings, uint64, error) {
	c.mu.RLock()
	if c.global != nil && c.fresh(c.globalExpires) {
		g, gen := c.global, c.globalGen
		c.mu.RUnlock()
		return g, gen, nil
	}
	c.mu.RUnlock()

	_, err, _ := c.group.Do("global", func() (interface{}, error) {
		g, err := seo.FetchGlobal(ctx, c.src)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			if c.global != nil && seo.IsFetchFailure(err) {
				c.logger.Warn("serving stale global settings", zap.Error(err))
				c.globalExpires = c.now().Add(c.retryInterval())
				return nil, nil
			}
			c.global = nil
			return nil, err
		}
		c.nextGen++
		c.global, c.globalExpires, c.globalGen = g, c.now().Add(c.ttl), c.nextGen
		return nil, nil
	})
	if err != nil {
		return nil, 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.global == nil {
		return nil, 0, seo.ErrConfigurationMissing
	}
	return c.global, c.globalGen, nil
}

func (c *SettingsCache) override(ctx context.Context, pageID string) (*seo.PageOverride, uint64, error) {
	c.mu.RLock()
	e, ok := c.pages[pageID]
	c.mu.RUnlock()
	if ok && c.fresh(e.expires) {
		return e.override, e.gen, nil
	}

	v, err, _ := c.group.Do("page:"+pageID, func() (interface{}, error) {
		o, err := seo.FetchOverride(ctx, c.src, pageID)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			if prev, ok := c.pages[pageID]; ok && seo.IsFetchFailure(err) {
				c.logger.Warn("serving stale page override", zap.String("page_id", pageID), zap.Error(err))
				prev.expires = c.now().Add(c.retryInterval())
				c.pages[pageID] = prev
				return prev, nil
			}
			return nil, err
		}
		c.nextGen++
		e := cachedOverride{override: o, expires: c.now().Add(c.ttl), gen: c.nextGen}
		c.pages[pageID] = e
		return e, nil
	})
	if err != nil {
		return nil, 0, err
	}
	e = v.(cachedOverride)
	return e.override, e.gen, nil
}

func (c *SettingsCache) fresh(expires time.Time) bool {
	return c.now().Before(expires)
}

// retryInterval is how long a stale value is served after a failed reload.
func (c *SettingsCache) retryInterval() time.Duration {
	if c.ttl < staleRetryInterval {
		return c.ttl
	}
	return staleRetryInterval
}
