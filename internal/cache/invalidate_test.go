package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInvalidateByCategory(t *testing.T) {
	s := NewMemoryStore(32)
	now := time.Now()

	s.Put("d1", &Entry{Key: "d1", Category: "dashboard-config", StoredAt: now, Body: []byte("a")})
	s.Put("d2", &Entry{Key: "d2", Category: "dashboard-config", StoredAt: now, Body: []byte("b")})
	s.Put("i1", &Entry{Key: "i1", Category: "indicator-query", StoredAt: now, Body: []byte("c")})

	removed := InvalidateByCategory(s, "dashboard-config")
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	// dashboard-config entries are gone
	if _, ok := s.Get("d1"); ok {
		t.Error("d1 should have been invalidated")
	}
	if _, ok := s.Get("d2"); ok {
		t.Error("d2 should have been invalidated")
	}

	// other categories untouched
	if _, ok := s.Get("i1"); !ok {
		t.Error("indicator-query entry must survive invalidation of another category")
	}

	stats := Collect(s)
	if stats.PerCategory["dashboard-config"] != 0 {
		t.Errorf("stats still report %d dashboard-config entries", stats.PerCategory["dashboard-config"])
	}
}

func TestInvalidateByCategoryNoMatches(t *testing.T) {
	s := NewMemoryStore(32)
	s.Put("k", &Entry{Key: "k", Category: "traffic-summary"})

	if removed := InvalidateByCategory(s, "nonexistent"); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	if _, ok := s.Get("k"); !ok {
		t.Error("unrelated entry must survive")
	}
}

func TestInvalidateByCategoryEmptyStore(t *testing.T) {
	s := NewMemoryStore(32)
	if removed := InvalidateByCategory(s, "anything"); removed != 0 {
		t.Errorf("removed = %d on empty store, want 0", removed)
	}
}

func TestInvalidateConcurrentWithLookups(t *testing.T) {
	policy := NewTTLPolicy(nil, time.Minute)
	store := NewMemoryStore(128)
	gate := NewGate(policy)

	now := time.Now()
	for i := 0; i < 64; i++ {
		storeEntry(store, fmt.Sprintf("k%d", i), "dashboard-config", now)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 64; i++ {
			// Either outcome of the race is fine; a hit must still carry
			// a complete entry.
			if entry, hit := gate.Lookup(store, fmt.Sprintf("k%d", i), "dashboard-config"); hit {
				if string(entry.Body) != `{"ok":true}` {
					t.Errorf("hit returned partial entry: %q", entry.Body)
				}
			}
		}
	}()

	InvalidateByCategory(store, "dashboard-config")
	wg.Wait()

	// A hit's best-effort write-back can land after the delete and keep an
	// entry alive; a quiescent invalidation clears the category for good.
	InvalidateByCategory(store, "dashboard-config")
	if got := Collect(store).PerCategory["dashboard-config"]; got != 0 {
		t.Errorf("category still holds %d entries after invalidation", got)
	}
}

// vanishingStore enumerates keys whose entries have already disappeared,
// simulating concurrent deletion during iteration.
type vanishingStore struct {
	MemoryStore
	ghost []string
}

func (s *vanishingStore) Keys() []string {
	return append(s.MemoryStore.Keys(), s.ghost...)
}

func TestInvalidateToleratesVanishingEntries(t *testing.T) {
	s := &vanishingStore{MemoryStore: *NewMemoryStore(32), ghost: []string{"gone1", "gone2"}}
	s.Put("k", &Entry{Key: "k", Category: "x"})

	// Ghost keys enumerate but their entries are absent; treated as already gone.
	if removed := InvalidateByCategory(s, "x"); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}
