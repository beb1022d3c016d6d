package cache

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"
)

// Store names used as metrics labels and admin stat keys.
const (
	StorePages = "pages"
	StoreAPI   = "api"
)

// maxKeyBodyBytes bounds how much of a request body is read for key
// fingerprinting. Anything beyond the bound is left on r.Body untouched.
const maxKeyBodyBytes = 1 << 20 // 1MB

// Route classifies one API endpoint into a response category.
type Route struct {
	Method   string
	Path     string
	Category string
}

// MetricsRecorder receives cache hit/miss events. May be nil.
type MetricsRecorder interface {
	RecordCacheHit(store, category string)
	RecordCacheMiss(store, category string)
}

// Layer coordinates the two cooperating caches in front of the business
// handlers: a generic page cache for GET traffic outside the API prefix, and
// a category-partitioned API cache for classified endpoints. The layer never
// decides what a response should be; on a miss the wrapped handler produces
// it and only a status-200 result is written back.
type Layer struct {
	pages     Store
	api       Store
	gate      *Gate
	apiPrefix string
	routes    map[string]string // "METHOD /path" → category
	metrics   MetricsRecorder
}

// NewLayer creates a cache layer over the two stores.
// apiPrefix marks the path space excluded from the page cache (e.g. "/api/").
func NewLayer(pages, api Store, gate *Gate, apiPrefix string, routes []Route) *Layer {
	classified := make(map[string]string, len(routes))
	for _, rt := range routes {
		classified[strings.ToUpper(rt.Method)+" "+rt.Path] = rt.Category
	}
	if apiPrefix == "" {
		apiPrefix = "/api/"
	}
	return &Layer{
		pages:     pages,
		api:       api,
		gate:      gate,
		apiPrefix: apiPrefix,
		routes:    classified,
	}
}

// SetMetrics attaches a hit/miss recorder. Call before serving traffic.
func (l *Layer) SetMetrics(m MetricsRecorder) {
	l.metrics = m
}

// PageStore returns the page-cache store.
func (l *Layer) PageStore() Store { return l.pages }

// APIStore returns the API-cache store.
func (l *Layer) APIStore() Store { return l.api }

// Gate returns the freshness gate.
func (l *Layer) Gate() *Gate { return l.gate }

// Eligible reports whether the request can be served from or written to
// either cache.
func (l *Layer) Eligible(r *http.Request) bool {
	_, _, _, ok := l.classify(r)
	return ok
}

// classify decides which store (if any) a request is eligible for and under
// which category. Page-cache entries have no category.
func (l *Layer) classify(r *http.Request) (store Store, storeName, category string, ok bool) {
	if category, found := l.routes[r.Method+" "+r.URL.Path]; found {
		return l.api, StoreAPI, category, true
	}
	if r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, l.apiPrefix) {
		return l.pages, StorePages, "", true
	}
	return nil, "", "", false
}

// Lookup returns the cached response for the request, if present and fresh.
// reqBody is the request body for mutating requests (nil for GET).
func (l *Layer) Lookup(r *http.Request, reqBody []byte) (*Entry, bool) {
	store, storeName, category, ok := l.classify(r)
	if !ok {
		return nil, false
	}
	key := DeriveKey(r.Method, r.URL.Path, r.URL.RawQuery, category, reqBody)
	entry, hit := l.gate.Lookup(store, key, category)
	if hit {
		l.recordHit(storeName, category)
	} else {
		l.recordMiss(storeName, category)
	}
	return entry, hit
}

// StoreResponse caches an origin response for the request. Responses with a
// status other than 200 are never stored; origin errors propagate to the
// client uncached and unaltered.
func (l *Layer) StoreResponse(r *http.Request, reqBody []byte, statusCode int, headers http.Header, respBody []byte) {
	if statusCode != http.StatusOK {
		return
	}
	store, _, category, ok := l.classify(r)
	if !ok {
		return
	}
	key := DeriveKey(r.Method, r.URL.Path, r.URL.RawQuery, category, reqBody)
	stored := headers.Clone()
	// Headers tied to the request that produced the response, not to the
	// response content. Replaying them would mislabel later requests.
	stored.Del("X-Request-Id")
	now := time.Now()
	store.Put(key, &Entry{
		Key:            key,
		Category:       category,
		StoredAt:       now,
		LastAccessedAt: now,
		StatusCode:     statusCode,
		Headers:        stored,
		Body:           respBody,
	})
}

// Middleware serves eligible requests from cache and captures origin
// responses for write-back. Clients that send Cache-Control: no-store or
// no-cache bypass the lookup.
func (l *Layer) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, _, _, eligible := l.classify(r); !eligible {
				next.ServeHTTP(w, r)
				return
			}

			cc := r.Header.Get("Cache-Control")
			if strings.Contains(cc, "no-store") || strings.Contains(cc, "no-cache") {
				next.ServeHTTP(w, r)
				return
			}

			var reqBody []byte
			if IsMutatingMethod(r.Method) {
				reqBody, _ = io.ReadAll(io.LimitReader(r.Body, maxKeyBodyBytes))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), r.Body))
			}

			if entry, hit := l.Lookup(r, reqBody); hit {
				WriteCachedEntry(w, entry)
				return
			}

			cw := NewCachingResponseWriter(w)
			next.ServeHTTP(cw, r)

			l.StoreResponse(r, reqBody, cw.StatusCode(), cw.Header(), cw.Body.Bytes())
		})
	}
}

func (l *Layer) recordHit(store, category string) {
	if l.metrics != nil {
		l.metrics.RecordCacheHit(store, category)
	}
}

func (l *Layer) recordMiss(store, category string) {
	if l.metrics != nil {
		l.metrics.RecordCacheMiss(store, category)
	}
}

// WriteCachedEntry replays a cached entry to the client with diagnostic
// freshness headers. Header names are informational, not contractual.
func WriteCachedEntry(w http.ResponseWriter, entry *Entry) {
	for key, values := range entry.Headers {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set("X-Cache", "HIT")
	w.Header().Set("X-Cache-Stored-At", entry.StoredAt.UTC().Format(time.RFC3339))
	w.Header().Set("X-Cache-Last-Access", entry.LastAccessedAt.UTC().Format(time.RFC3339))
	w.WriteHeader(entry.StatusCode)
	w.Write(entry.Body)
}

// CachingResponseWriter wraps http.ResponseWriter to capture the response for caching.
type CachingResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	Body        bytes.Buffer
	wroteHeader bool
}

// NewCachingResponseWriter creates a new caching response writer.
func NewCachingResponseWriter(w http.ResponseWriter) *CachingResponseWriter {
	return &CachingResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code and writes it to the underlying writer.
func (cw *CachingResponseWriter) WriteHeader(code int) {
	if !cw.wroteHeader {
		cw.statusCode = code
		cw.wroteHeader = true
		cw.ResponseWriter.WriteHeader(code)
	}
}

// StatusCode returns the captured status code.
func (cw *CachingResponseWriter) StatusCode() int {
	return cw.statusCode
}

// Write captures the body and writes it to the underlying writer.
func (cw *CachingResponseWriter) Write(b []byte) (int, error) {
	cw.Body.Write(b)
	return cw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher.
func (cw *CachingResponseWriter) Flush() {
	if flusher, ok := cw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
