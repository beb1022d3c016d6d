package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/wudi/edgegate/internal/middleware"
)

// Header carries the request ID to clients and origin handlers.
const Header = "X-Request-ID"

type contextKey struct{}

// FromContext returns the request ID, or "" if none was assigned.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Middleware assigns a UUID to each request that arrives without one, stores
// it on the context, and echoes it on the response.
func Middleware() middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(Header, id)
			ctx := context.WithValue(r.Context(), contextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
