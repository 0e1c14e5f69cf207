package syncutil

import "sync"

// BiMap maintains a 1-1 bidirectional mapping between K and V, for interning
// path-like values (spec §4.E). No package in this module uses it outside its
// own tests.
type BiMap[K comparable, V comparable] struct {
	mu      sync.RWMutex
	forward map[K]V
	reverse map[V]K
}

func NewBiMap[K comparable, V comparable]() *BiMap[K, V] {
	return &BiMap[K, V]{forward: make(map[K]V), reverse: make(map[V]K)}
}

// TryInsert installs k<->v atomically. If k already maps to something, it
// returns the existing value and ok=false without modifying the map.
func (b *BiMap[K, V]) TryInsert(k K, v V) (existing V, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, present := b.forward[k]; present {
		return e, false
	}
	b.forward[k] = v
	b.reverse[v] = k
	var zero V
	return zero, true
}

func (b *BiMap[K, V]) Forward(k K) (V, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.forward[k]
	return v, ok
}

func (b *BiMap[K, V]) Reverse(v V) (K, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	k, ok := b.reverse[v]
	return k, ok
}

func (b *BiMap[K, V]) Delete(k K) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.forward[k]; ok {
		delete(b.forward, k)
		delete(b.reverse, v)
	}
}

func (b *BiMap[K, V]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.forward)
}
