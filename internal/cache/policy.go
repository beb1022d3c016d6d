package cache

import "time"

// TTLPolicy is an immutable mapping from response category to time-to-live,
// with a default for unrecognized categories. It is constructed once at
// startup from config and injected; it never mutates at runtime.
type TTLPolicy struct {
	ttls       map[string]time.Duration
	defaultTTL time.Duration
}

// DefaultTTL is used when no default is configured.
const DefaultTTL = 5 * time.Minute

// NewTTLPolicy creates a TTLPolicy. The input map is copied.
func NewTTLPolicy(ttls map[string]time.Duration, defaultTTL time.Duration) *TTLPolicy {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	copied := make(map[string]time.Duration, len(ttls))
	for category, ttl := range ttls {
		if ttl > 0 {
			copied[category] = ttl
		}
	}
	return &TTLPolicy{ttls: copied, defaultTTL: defaultTTL}
}

// TTLFor returns the TTL for a category, or the default if unrecognized.
func (p *TTLPolicy) TTLFor(category string) time.Duration {
	if ttl, ok := p.ttls[category]; ok {
		return ttl
	}
	return p.defaultTTL
}

// Default returns the fallback TTL.
func (p *TTLPolicy) Default() time.Duration {
	return p.defaultTTL
}

// Categories returns the configured category labels.
func (p *TTLPolicy) Categories() []string {
	out := make([]string, 0, len(p.ttls))
	for category := range p.ttls {
		out = append(out, category)
	}
	return out
}
