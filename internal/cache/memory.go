package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore is a bounded in-memory store implementing Store, used for
// tests and single-node deployments. The LRU bound is the store's own
// storage-management policy; freshness is decided by the Gate, never here.
type MemoryStore struct {
	lru *lru.Cache[string, *Entry]
}

// NewMemoryStore creates an in-memory store holding at most maxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	l, _ := lru.New[string, *Entry](maxEntries)
	return &MemoryStore{lru: l}
}

func (s *MemoryStore) Get(key string) (*Entry, bool) {
	return s.lru.Get(key)
}

func (s *MemoryStore) Put(key string, entry *Entry) {
	s.lru.Add(key, entry)
}

func (s *MemoryStore) Delete(key string) {
	s.lru.Remove(key)
}

func (s *MemoryStore) Keys() []string {
	return s.lru.Keys()
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
