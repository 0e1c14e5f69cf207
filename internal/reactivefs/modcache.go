package reactivefs

import (
	"sync"

	rawfs "github.com/jsreactor/engine/internal/fs"
)

// modCache is a ModKey-gated content cache, generalized from the teacher's
// internal/cache.FSCache (cache_fs.go): before re-reading a file's bytes,
// check whether its inode/size/mtime/mode/uid fingerprint has actually
// changed since it was last cached, and skip the read entirely if not. The
// teacher used this to avoid redundant reads across independent builds; here
// it does the same job for the (much more frequent) case of Write's
// byte-equal no-op check finding a fast path without touching disk content
// at all — see SPEC_FULL.md §6 "ModKey-based change detection".
type modCache struct {
	mu      sync.Mutex
	entries map[string]*modCacheEntry
}

type modCacheEntry struct {
	modKey   rawfs.ModKey
	modKeyOK bool
	content  FileContent
}

func newModCache() *modCache {
	return &modCache{entries: make(map[string]*modCacheEntry)}
}

func (c *modCache) get(sp string) (*modCacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[sp]
	return e, ok
}

func (c *modCache) put(sp string, e *modCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sp] = e
}

func (c *modCache) forget(sp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sp)
}

// forgetPrefix drops every cached entry at or under sp, used alongside
// invalidatorMap.invalidatePrefix when a whole subtree changes.
func (c *modCache) forgetPrefix(sp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.entries {
		if isUnderPrefix(p, sp) {
			delete(c.entries, p)
		}
	}
}

// freshContent returns the cached content for sp without touching the
// file's bytes, if and only if raw's current ModKey for sp still matches the
// one recorded when the entry was cached.
func (f *FS) freshContent(sp string) (FileContent, bool) {
	entry, ok := f.modCache.get(sp)
	if !ok || !entry.modKeyOK {
		return FileContent{}, false
	}
	mk, err := f.raw.ModKey(sp)
	if err != nil || mk != entry.modKey {
		return FileContent{}, false
	}
	return entry.content, true
}

func (f *FS) cacheContent(sp string, content FileContent) {
	mk, err := f.raw.ModKey(sp)
	f.modCache.put(sp, &modCacheEntry{modKey: mk, modKeyOK: err == nil, content: content})
}
