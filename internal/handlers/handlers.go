// Package handlers implements the business API endpoints. They validate
// request fields and return templated data; response freshness is the cache
// layer's concern, never theirs.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/wudi/edgegate/internal/errors"
	"github.com/wudi/edgegate/internal/middleware/requestid"
)

// maxRequestBody bounds how much of a request body a handler will read.
const maxRequestBody = 1 << 20 // 1MB

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		errors.ErrBadRequest.
			WithDetails("failed to read request body").
			WithRequestID(requestid.FromContext(r.Context())).
			WriteJSON(w)
		return nil, false
	}
	return body, true
}

func badRequest(w http.ResponseWriter, r *http.Request, details string) {
	errors.ErrBadRequest.
		WithDetails(details).
		WithRequestID(requestid.FromContext(r.Context())).
		WriteJSON(w)
}
