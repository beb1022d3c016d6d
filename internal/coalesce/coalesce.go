// Package coalesce collapses concurrent identical requests into a single
// origin computation via singleflight. This is an optional layer in front of
// the response cache; baseline operation accepts cache stampedes, so
// coalescing stays off unless configured on. Only cache-eligible requests
// are ever collapsed when an eligibility predicate is supplied.
package coalesce

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wudi/edgegate/internal/cache"
	"github.com/wudi/edgegate/internal/middleware"
)

// Response captures a buffered HTTP response for replay to multiple callers.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Stats holds coalescing metrics.
type Stats struct {
	GroupsCreated     int64 `json:"groups_created"`
	RequestsCoalesced int64 `json:"requests_coalesced"`
	Timeouts          int64 `json:"timeouts"`
	InFlight          int64 `json:"in_flight"`
}

// maxKeyBodyBytes bounds how much of a POST body feeds the coalesce key.
const maxKeyBodyBytes = 1 << 20

// Coalescer deduplicates concurrent identical requests using singleflight.
type Coalescer struct {
	group   singleflight.Group
	timeout time.Duration

	groupsCreated     atomic.Int64
	requestsCoalesced atomic.Int64
	timeouts          atomic.Int64
	inFlight          atomic.Int64
}

// New creates a Coalescer. timeout bounds how long a caller waits on a shared
// in-flight computation before falling through to its own.
func New(timeout time.Duration) *Coalescer {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Coalescer{timeout: timeout}
}

// Execute runs fn via singleflight, sharing the result with concurrent callers.
// Returns the response and whether this caller shared a result (true = coalesced).
// If the coalesce timeout expires, the caller falls through to fn directly.
func (c *Coalescer) Execute(ctx context.Context, key string, fn func() (*Response, error)) (*Response, bool, error) {
	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.groupsCreated.Add(1)
		return fn()
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			return nil, false, result.Err
		}
		resp := result.Val.(*Response)
		if result.Shared {
			c.requestsCoalesced.Add(1)
		}
		return resp, result.Shared, nil

	case <-time.After(c.timeout):
		// Timeout: forget the key so future callers don't wait on the same group,
		// then fall through to direct execution.
		c.group.Forget(key)
		c.timeouts.Add(1)
		resp, err := fn()
		return resp, false, err

	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Stats returns a snapshot of coalescing metrics.
func (c *Coalescer) Stats() Stats {
	return Stats{
		GroupsCreated:     c.groupsCreated.Load(),
		RequestsCoalesced: c.requestsCoalesced.Load(),
		Timeouts:          c.timeouts.Load(),
		InFlight:          c.inFlight.Load(),
	}
}

// bufferingWriter captures an HTTP response without forwarding to the client.
type bufferingWriter struct {
	statusCode int
	header     http.Header
	body       bytes.Buffer
}

func newBufferingWriter() *bufferingWriter {
	return &bufferingWriter{
		statusCode: 200,
		header:     make(http.Header),
	}
}

func (w *bufferingWriter) Header() http.Header {
	return w.header
}

func (w *bufferingWriter) WriteHeader(code int) {
	w.statusCode = code
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

// Response converts the captured data to a Response.
func (w *bufferingWriter) Response() *Response {
	return &Response{
		StatusCode: w.statusCode,
		Headers:    w.header.Clone(),
		Body:       w.body.Bytes(),
	}
}

// WriteResponse replays a captured response to a real ResponseWriter.
// If shared is true, an X-Coalesced: true header is added.
func WriteResponse(w http.ResponseWriter, resp *Response, shared bool) {
	for k, vv := range resp.Headers {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if shared {
		w.Header().Set("X-Coalesced", "true")
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

// Middleware returns a middleware that deduplicates concurrent identical
// requests. Keys reuse the cache key derivation so two requests that would
// share a cache slot also share an in-flight computation.
//
// eligible limits which requests are collapsed; pass the cache layer's
// eligibility check so requests with per-call side effects (unclassified
// POSTs) always reach the origin individually. A nil predicate coalesces
// everything.
func (c *Coalescer) Middleware(eligible func(*http.Request) bool) middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if eligible != nil && !eligible(r) {
				next.ServeHTTP(w, r)
				return
			}

			var reqBody []byte
			if cache.IsMutatingMethod(r.Method) {
				reqBody, _ = io.ReadAll(io.LimitReader(r.Body, maxKeyBodyBytes))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), r.Body))
			}
			key := cache.DeriveKey(r.Method, r.URL.Path, r.URL.RawQuery, "", reqBody)

			// Detach context from caller cancellation but preserve values,
			// so one client disconnecting doesn't cancel the shared call.
			detachedCtx := context.WithoutCancel(r.Context())

			resp, shared, err := c.Execute(r.Context(), key, func() (*Response, error) {
				bw := newBufferingWriter()
				next.ServeHTTP(bw, r.WithContext(detachedCtx))
				return bw.Response(), nil
			})
			if err != nil {
				http.Error(w, "coalesce error", http.StatusBadGateway)
				return
			}

			WriteResponse(w, resp, shared)
		})
	}
}
