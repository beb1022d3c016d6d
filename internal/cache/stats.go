package cache

import "time"

// Stats aggregates the contents of one store at a point in time.
// Page-cache entries carry no category and are counted under "".
type Stats struct {
	TotalEntries int            `json:"total_entries"`
	ApproxBytes  int64          `json:"approx_bytes"`
	PerCategory  map[string]int `json:"per_category"`
	AsOf         time.Time      `json:"as_of"`
}

// Collect enumerates the store and aggregates entry count, approximate byte
// size (body length as proxy) and per-category counts. It never mutates
// entries or metadata. Cost is O(n) entries and O(body) per entry; treat it
// as an expensive diagnostic, not a hot-path call.
//
// Expired-but-unread entries still count: expiration is checked at read time
// by the Gate, and Collect deliberately does not apply the policy.
func Collect(store Store) Stats {
	stats := Stats{
		PerCategory: make(map[string]int),
		AsOf:        time.Now(),
	}
	for _, key := range store.Keys() {
		entry, ok := store.Get(key)
		if !ok {
			continue // removed since enumeration
		}
		stats.TotalEntries++
		stats.ApproxBytes += int64(len(entry.Body))
		stats.PerCategory[entry.Category]++
	}
	return stats
}
