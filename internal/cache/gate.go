package cache

import "time"

// Gate decides HIT or MISS for a stored entry based on its age against the
// TTL policy. Expiration is lazy: an expired entry is removed when it is next
// looked up, never by a background sweep. Entries that expire and are never
// read again persist until the backing store's own retention ages them out;
// that growth characteristic is a deliberate tradeoff.
type Gate struct {
	policy *TTLPolicy
	now    func() time.Time
}

// NewGate creates a freshness gate over the given policy.
func NewGate(policy *TTLPolicy) *Gate {
	return &Gate{policy: policy, now: time.Now}
}

// Lookup fetches key from the store and checks freshness.
//
// Absent entries are a miss. Fresh entries get their LastAccessedAt refreshed
// (written back best-effort; the hit does not depend on the write landing)
// and are returned. A stale entry is deleted and reported as a miss, so a
// stale response is never served, even momentarily.
//
// The refresh operates on a copy: an entry handed out by a store is never
// mutated in place, so concurrent lookups of the same key cannot race on
// its metadata. Each caller gets its own Entry; the Headers map and Body
// slice stay shared and are read-only by contract.
func (g *Gate) Lookup(store Store, key, category string) (*Entry, bool) {
	entry, ok := store.Get(key)
	if !ok {
		return nil, false
	}

	now := g.now()
	if entry.Age(now) >= g.policy.TTLFor(category) {
		store.Delete(key)
		return nil, false
	}

	refreshed := *entry
	refreshed.LastAccessedAt = now
	store.Put(key, &refreshed)
	return &refreshed, true
}

// Policy returns the TTL policy the gate enforces.
func (g *Gate) Policy() *TTLPolicy {
	return g.policy
}
