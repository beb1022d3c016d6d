package cache

// InvalidateByCategory deletes every entry tagged with the given category.
// Returns the number of entries removed.
//
// This is O(n) in total entry count and intended for administrative use,
// e.g. after a configuration change invalidates a whole response class.
// It is safe to call concurrently with reads and writes: a delete racing a
// read resolves to either a miss or one final read of an entry the next gate
// check would remove anyway.
func InvalidateByCategory(store Store, category string) int {
	removed := 0
	for _, key := range store.Keys() {
		entry, ok := store.Get(key)
		if !ok {
			continue // already gone
		}
		if entry.Category == category {
			store.Delete(key)
			removed++
		}
	}
	return removed
}
