package cache

import (
	"net/http"
	"time"
)

// Entry represents a cached response. Only status-200 responses are ever
// written; StoredAt is immutable once written, LastAccessedAt is refreshed
// on every hit (informational only, expiration is TTL-based).
type Entry struct {
	Key            string
	Category       string
	StoredAt       time.Time
	LastAccessedAt time.Time
	StatusCode     int
	Headers        http.Header
	Body           []byte
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}
