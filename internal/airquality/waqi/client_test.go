package waqi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/greenroute/greenroute/internal/airquality"
)

const boundsBody = `{
	"status": "ok",
	"data": [
		{"uid": 8190, "lat": 12.9387, "lon": 77.5737, "aqi": "152",
		 "station": {"name": "Jayanagar 5th Block, Bengaluru", "time": "2024-03-01T09:00:00+05:30"}},
		{"uid": 11270, "lat": 13.0357, "lon": 77.5946, "aqi": "-",
		 "station": {"name": "Hebbal, Bengaluru", "time": "2024-03-01T09:00:00+05:30"}},
		{"uid": 11276, "lat": 12.9135, "lon": 77.5101, "aqi": "88",
		 "station": {"name": "RVCE, Bengaluru", "time": "2024-03-01T09:00:00+05:30"}}
	]
}`

func TestClient_FetchSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "test-token" {
			t.Errorf("expected token in query, got %q", got)
		}
		if got := r.URL.Query().Get("latlng"); got != "12.7,77.4,13.2,77.9" {
			t.Errorf("unexpected latlng %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(boundsBody))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{Token: "test-token", BaseURL: server.URL})

	snapshot, err := client.FetchSnapshot(context.Background(), BengaluruBounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Station with "-" AQI is skipped.
	if snapshot.Len() != 2 {
		t.Fatalf("expected 2 readings, got %d", snapshot.Len())
	}

	readings := snapshot.Readings()
	if readings[0].StationID != "11276" || readings[0].AQI != 88 {
		t.Errorf("unexpected first reading %+v", readings[0])
	}
	if readings[1].StationID != "8190" || readings[1].AQI != 152 {
		t.Errorf("unexpected second reading %+v", readings[1])
	}
	if readings[1].Name != "Jayanagar 5th Block, Bengaluru" {
		t.Errorf("station name not carried over: %q", readings[1].Name)
	}
	if readings[1].ObservedAt.IsZero() {
		t.Error("expected observation time to be parsed")
	}
}

func TestClient_FetchSnapshot_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "data": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{Token: "t", BaseURL: server.URL})

	_, err := client.FetchSnapshot(context.Background(), BengaluruBounds)
	if !errors.Is(err, airquality.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestClient_FetchSnapshot_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{Token: "t", BaseURL: server.URL})

	_, err := client.FetchSnapshot(context.Background(), BengaluruBounds)
	if !errors.Is(err, airquality.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestParseAQI(t *testing.T) {
	cases := []struct {
		raw   string
		value float64
		ok    bool
	}{
		{"152", 152, true},
		{" 88 ", 88, true},
		{"-", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{"-5", 0, false},
	}
	for _, tc := range cases {
		v, ok := parseAQI(tc.raw)
		if ok != tc.ok || v != tc.value {
			t.Errorf("parseAQI(%q) = (%f, %v), want (%f, %v)", tc.raw, v, ok, tc.value, tc.ok)
		}
	}
}
