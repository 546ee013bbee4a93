package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" || !strings.HasPrefix(seen, "req_") {
		t.Errorf("expected generated request ID, got %q", seen)
	}
	if got := rec.Header().Get("X-Request-Id"); got != seen {
		t.Errorf("header %q does not match context value %q", got, seen)
	}
}

func TestRequestID_PropagatesExisting(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req_incoming")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "req_incoming" {
		t.Errorf("expected propagated ID, got %q", seen)
	}
}

func TestRequestID_ReplacesOversizedHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("x", 200))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if len(seen) > maxRequestIDLength || !strings.HasPrefix(seen, "req_") {
		t.Errorf("oversized incoming ID must be replaced, got %q", seen)
	}
}
