package syncutil

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMutexMapSerializesSameKey(t *testing.T) {
	m := NewMutexMap[string]()
	var counter int32
	var wg sync.WaitGroup
	var maxObserved int32

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := m.Lock("k")
			defer g.Unlock()
			n := atomic.AddInt32(&counter, 1)
			if n > atomic.LoadInt32(&maxObserved) {
				atomic.StoreInt32(&maxObserved, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&counter, -1)
		}()
	}
	wg.Wait()
	if maxObserved != 1 {
		t.Fatalf("expected mutual exclusion, observed concurrency %d", maxObserved)
	}
}

func TestMutexMapDifferentKeysDontBlock(t *testing.T) {
	m := NewMutexMap[string]()
	done := make(chan struct{})
	g := m.Lock("a")
	go func() {
		m.With("b", func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("locking a different key should not block")
	}
	g.Unlock()
}

func TestBiMapTryInsert(t *testing.T) {
	b := NewBiMap[string, int]()
	if _, ok := b.TryInsert("a", 1); !ok {
		t.Fatal("expected first insert to succeed")
	}
	if existing, ok := b.TryInsert("a", 2); ok || existing != 1 {
		t.Fatalf("expected conflicting insert to fail with existing=1, got %v %v", existing, ok)
	}
	if v, ok := b.Forward("a"); !ok || v != 1 {
		t.Fatalf("got %v %v", v, ok)
	}
	if k, ok := b.Reverse(1); !ok || k != "a" {
		t.Fatalf("got %v %v", k, ok)
	}
}
