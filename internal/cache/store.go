package cache

// Store abstracts the backing cache service for one logical namespace.
// The page cache and the API cache use separate Store instances, so identical
// keys in each never collide.
//
// Caching is strictly best-effort: implementations must swallow backend I/O
// failures rather than propagate them. A failed Get is a miss, a failed Put
// or Delete is a no-op, and a failed Keys is an empty enumeration. Keys must
// tolerate entries disappearing concurrently; callers treat a key whose entry
// is gone by the time they fetch it as already removed.
//
// An Entry returned by Get may be shared between concurrent callers and is
// read-only. Anything that needs to change entry metadata writes back a copy
// via Put instead of mutating in place.
type Store interface {
	Get(key string) (*Entry, bool)
	Put(key string, entry *Entry)
	Delete(key string)
	Keys() []string
}
