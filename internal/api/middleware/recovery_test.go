package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/api/models"
)

func TestRecovery_PanicBecomesProblemResponse(t *testing.T) {
	h := RequestID(Recovery(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("edge cache corrupted")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stations", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem+json, got %q", ct)
	}

	var problem models.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decoding problem: %v", err)
	}
	if problem.Type != models.ProblemTypeInternal {
		t.Errorf("unexpected problem type %q", problem.Type)
	}
	if problem.Instance != "/v1/stations" {
		t.Errorf("expected instance path, got %q", problem.Instance)
	}
	if problem.TraceID == "" {
		t.Error("expected the request ID to reach the problem body")
	}
}
