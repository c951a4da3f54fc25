package seo

import "sync"

// Snapshot is the input to one resolution: the settings current for a page
// id together with the generations they were loaded at.
type Snapshot struct {
	PageID           string
	Global           *GlobalSettings
	Override         *PageOverride
	GlobalGeneration uint64
	PageGeneration   uint64
}

type memoEntry struct {
	globalGen uint64
	pageGen   uint64
	meta      Metadata
}

// Memo keeps the last resolved metadata per page id. An entry is reused only
// while the snapshot it was computed from is still current; any generation
// change recomputes it.
type Memo struct {
	mu      sync.RWMutex
	entries map[string]memoEntry
}

// NewMemo creates an empty Memo.
func NewMemo() *Memo {
	return &Memo{entries: make(map[string]memoEntry)}
}

// Resolve returns the memoized metadata for snap, resolving when needed.
// The bool reports whether the result came from the memo.
func (m *Memo) Resolve(snap Snapshot) (Metadata, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[snap.PageID]
	m.mu.RUnlock()
	if ok && e.globalGen == snap.GlobalGeneration && e.pageGen == snap.PageGeneration {
		return e.meta, true, nil
	}

	meta, err := Resolve(snap.PageID, snap.Global, snap.Override)
	if err != nil {
		return Metadata{}, false, err
	}

	m.mu.Lock()
	m.entries[snap.PageID] = memoEntry{
		globalGen: snap.GlobalGeneration,
		pageGen:   snap.PageGeneration,
		meta:      meta,
	}
	m.mu.Unlock()
	return meta, false, nil
}

// Forget drops the entry for pageID.
func (m *Memo) Forget(pageID string) {
	m.mu.Lock()
	delete(m.entries, pageID)
	m.mu.Unlock()
}

// Reset drops every entry.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.entries = make(map[string]memoEntry)
	m.mu.Unlock()
}
