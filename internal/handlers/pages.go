package handlers

import (
	"net/http"

	"github.com/wudi/edgegate/internal/errors"
	"github.com/wudi/edgegate/internal/middleware/requestid"
)

// Pages serves the non-API HTML-ish pages that flow through the page cache.
type Pages struct {
	pages map[string]page
}

type page struct {
	contentType string
	body        string
}

// NewPages creates the page handler with its built-in page set.
func NewPages() *Pages {
	return &Pages{
		pages: map[string]page{
			"/": {
				contentType: "text/html; charset=utf-8",
				body:        "<!doctype html><title>edgegate</title><h1>Partner Portal</h1>",
			},
			"/partners": {
				contentType: "text/html; charset=utf-8",
				body:        "<!doctype html><title>Partners</title><ul><li>acme</li><li>globex</li></ul>",
			},
			"/docs": {
				contentType: "text/html; charset=utf-8",
				body:        "<!doctype html><title>API Docs</title><p>See /api/ for endpoints.</p>",
			},
			"/status": {
				contentType: "text/plain; charset=utf-8",
				body:        "ok\n",
			},
		},
	}
}

// ServeHTTP serves a page or a JSON 404. It fits http.Handler so the
// dispatcher can install it as the router's NotFound fallback.
func (h *Pages) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		errors.ErrMethodNotAllowed.
			WithRequestID(requestid.FromContext(r.Context())).
			WriteJSON(w)
		return
	}
	p, ok := h.pages[r.URL.Path]
	if !ok {
		errors.ErrNotFound.
			WithRequestID(requestid.FromContext(r.Context())).
			WriteJSON(w)
		return
	}
	w.Header().Set("Content-Type", p.contentType)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write([]byte(p.body))
	}
}
