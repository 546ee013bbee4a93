package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/api/models"
	"github.com/greenroute/greenroute/internal/graph"
	"github.com/greenroute/greenroute/internal/routing"
)

func splitGraphHandler(t *testing.T) *RouteHandler {
	t.Helper()
	// Two disconnected islands.
	g := graph.New()
	g.AddNode(graph.Node{ID: 1, Lat: 12.90, Lon: 77.59})
	g.AddNode(graph.Node{ID: 2, Lat: 12.91, Lon: 77.59})
	g.AddNode(graph.Node{ID: 3, Lat: 13.10, Lon: 77.80})
	g.AddNode(graph.Node{ID: 4, Lat: 13.11, Lon: 77.80})
	if _, err := g.AddEdge(1, 2, graph.EdgeAttrs{Length: 1100}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(3, 4, graph.EdgeAttrs{Length: 1100}, nil); err != nil {
		t.Fatal(err)
	}
	engine := routing.NewEngine(g, routing.EngineConfig{})
	return NewRouteHandler(engine, nil, zerolog.Nop())
}

func compareRequest(t *testing.T, req models.CompareRoutesRequest) *http.Request {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return httptest.NewRequest(http.MethodPost, "/v1/routes/compare", bytes.NewReader(body))
}

func TestCompareRoutes_NoRouteIs422(t *testing.T) {
	h := splitGraphHandler(t)

	rec := httptest.NewRecorder()
	h.CompareRoutes(rec, compareRequest(t, models.CompareRoutesRequest{
		Origin:      models.Point{Lat: 12.90, Lon: 77.59},
		Destination: models.Point{Lat: 13.10, Lon: 77.80},
	}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var problem models.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decoding problem: %v", err)
	}
	if problem.Type != models.ProblemTypeNoRoute {
		t.Errorf("unexpected problem type %q", problem.Type)
	}
	// The detail names the unreachable endpoint for the caller.
	if problem.Detail == "" {
		t.Error("expected detail naming the unreachable endpoint")
	}
}

func TestCompareRoutes_ValidationErrors(t *testing.T) {
	h := splitGraphHandler(t)

	rec := httptest.NewRecorder()
	h.CompareRoutes(rec, compareRequest(t, models.CompareRoutesRequest{
		Origin:      models.Point{Lat: 91, Lon: 77.59},
		Destination: models.Point{Lat: 12.91, Lon: 77.59},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var problem models.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decoding problem: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "origin.lat" {
		t.Errorf("unexpected field errors %v", problem.Errors)
	}
}
