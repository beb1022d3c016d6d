package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
)

func TestNew(t *testing.T) {
	e := New(400, "bad request")
	if e.Code != 400 {
		t.Errorf("Code = %d, want 400", e.Code)
	}
	if e.Message != "bad request" {
		t.Errorf("Message = %q, want %q", e.Message, "bad request")
	}
	if e.Error() != "bad request" {
		t.Errorf("Error() = %q, want %q", e.Error(), "bad request")
	}
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	e := Wrap(inner, 503, "store error")

	if e.Code != 503 {
		t.Errorf("Code = %d, want 503", e.Code)
	}

	want := "store error: connection refused"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestUnwrap(t *testing.T) {
	inner := fmt.Errorf("root cause")
	e := Wrap(inner, 500, "wrapped")

	if e.Unwrap() != inner {
		t.Error("Unwrap should return the underlying error")
	}

	// errors.Is should work through the chain
	if !errors.Is(e, inner) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestWithDetails(t *testing.T) {
	e := ErrBadRequest.WithDetails("field 'partner_id' is required")

	if e.Details != "field 'partner_id' is required" {
		t.Errorf("Details = %q", e.Details)
	}
	if e.Code != 400 {
		t.Errorf("Code = %d, want 400", e.Code)
	}
	// The base singleton must not be mutated
	if ErrBadRequest.Details != "" {
		t.Error("WithDetails mutated the base error")
	}
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
	}{
		{"preserialized base", ErrNotFound},
		{"with details", ErrBadRequest.WithDetails("missing field")},
		{"with request id", ErrInternalServer.WithRequestID("req-123")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.err.WriteJSON(rec)

			if rec.Code != tt.err.Code {
				t.Errorf("status = %d, want %d", rec.Code, tt.err.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var decoded APIError
			if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
				t.Fatalf("response is not valid JSON: %v", err)
			}
			if decoded.Code != tt.err.Code || decoded.Message != tt.err.Message {
				t.Errorf("decoded = %+v, want code=%d message=%q", decoded, tt.err.Code, tt.err.Message)
			}
		})
	}
}

func TestIsAPIError(t *testing.T) {
	if _, ok := IsAPIError(fmt.Errorf("plain")); ok {
		t.Error("plain error should not be an APIError")
	}
	if ae, ok := IsAPIError(ErrNotFound); !ok || ae != ErrNotFound {
		t.Error("ErrNotFound should be recognized as an APIError")
	}
}
