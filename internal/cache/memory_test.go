package cache

import (
	"testing"
	"time"
)

func TestMemoryStoreGetPut(t *testing.T) {
	s := NewMemoryStore(16)

	entry := &Entry{Key: "k1", StatusCode: 200, Body: []byte("data")}
	s.Put("k1", entry)

	got, ok := s.Get("k1")
	if !ok {
		t.Fatal("expected entry to be present")
	}
	if string(got.Body) != "data" {
		t.Errorf("body = %q, want %q", got.Body, "data")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore(16)

	s.Put("k", &Entry{Body: []byte("v1")})
	s.Put("k", &Entry{Body: []byte("v2")})

	got, _ := s.Get("k")
	if string(got.Body) != "v2" {
		t.Errorf("body = %q, want last write", got.Body)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d after overwrite, want 1", s.Len())
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(16)

	s.Put("k", &Entry{Body: []byte("data")})
	s.Delete("k")

	if _, ok := s.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryStoreDeleteAbsentKey(t *testing.T) {
	s := NewMemoryStore(16)
	s.Delete("never-existed") // must not panic
}

func TestMemoryStoreKeys(t *testing.T) {
	s := NewMemoryStore(16)

	s.Put("a", &Entry{})
	s.Put("b", &Entry{})
	s.Put("c", &Entry{})

	keys := s.Keys()
	if len(keys) != 3 {
		t.Fatalf("Keys() returned %d keys, want 3", len(keys))
	}

	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("Keys() missing %q", want)
		}
	}
}

func TestMemoryStoreCapacityBound(t *testing.T) {
	s := NewMemoryStore(2)

	now := time.Now()
	s.Put("a", &Entry{StoredAt: now})
	s.Put("b", &Entry{StoredAt: now})
	s.Put("c", &Entry{StoredAt: now})

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want capacity bound 2", s.Len())
	}
}
