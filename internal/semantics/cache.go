package semantics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"rpg/internal/rpgerrors"
	"rpg/internal/rpgmodel"
)

// cacheEntry is the on-disk wire form of a cached SemanticFeature.
type cacheEntry struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Intent      string   `json:"intent,omitempty"`
}

// Cache is a persistent hash(inputs) -> SemanticFeature mapping. It is
// lazy-loaded on first use, mutated only in memory during a pass, and
// flushed to disk atomically once at evolution completion. Concurrent
// writers race last-write-wins; the cache is advisory, never authoritative.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]cacheEntry
	loaded  bool
	dirty   bool
}

// NewCache returns a Cache backed by path. The file is not read until the
// first Get/Put call.
func NewCache(path string) *Cache {
	return &Cache{path: path, entries: make(map[string]cacheEntry)}
}

func (c *Cache) ensureLoaded() {
	if c.loaded {
		return
	}
	c.loaded = true

	data, err := os.ReadFile(c.path)
	if err != nil {
		return
	}
	var entries map[string]cacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return
	}
	c.entries = entries
}

// Get returns the cached feature for key, if present.
func (c *Cache) Get(key string) (rpgmodel.SemanticFeature, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoaded()
	entry, ok := c.entries[key]
	if !ok {
		return rpgmodel.SemanticFeature{}, false
	}
	return rpgmodel.NewSemanticFeature(entry.Description, entry.Keywords, rpgmodel.IntentTag(entry.Intent)), true
}

// Put stores feature under key in memory. It is not persisted until Flush.
func (c *Cache) Put(key string, feature rpgmodel.SemanticFeature) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoaded()
	intent, _ := feature.Intent()
	c.entries[key] = cacheEntry{
		Description: feature.Description(),
		Keywords:    feature.Keywords(),
		Intent:      string(intent),
	}
	c.dirty = true
}

// Flush writes the in-memory cache to disk if it has unsaved changes, using
// a write-to-temp-then-rename sequence so a crash mid-write never corrupts
// the previous cache contents.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return rpgerrors.StoreError("creating semantic cache directory", err)
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return rpgerrors.StoreError("marshaling semantic cache", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return rpgerrors.StoreError("writing semantic cache temp file", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return rpgerrors.StoreError("renaming semantic cache temp file", err)
	}

	c.dirty = false
	return nil
}
