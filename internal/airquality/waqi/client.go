// Package waqi provides a client for the World Air Quality Index API.
package waqi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/greenroute/greenroute/internal/airquality"
	"github.com/greenroute/greenroute/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the WAQI API.
	DefaultBaseURL = "https://api.waqi.info"

	// ProviderName identifies this provider.
	ProviderName = "waqi"
)

// BoundingBox selects the stations to fetch.
type BoundingBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// BengaluruBounds covers the Bengaluru metropolitan area.
var BengaluruBounds = BoundingBox{South: 12.7, West: 77.4, North: 13.2, East: 77.9}

// ClientConfig holds configuration for the WAQI client.
type ClientConfig struct {
	// Token is the WAQI API token (required).
	Token string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a default resilient
	// client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a WAQI API client.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new WAQI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// API response types (from the WAQI map/bounds endpoint).

type boundsResponse struct {
	Status string        `json:"status"`
	Data   []stationData `json:"data"`
}

type stationData struct {
	UID     int             `json:"uid"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	AQI     string          `json:"aqi"`
	Station stationMetadata `json:"station"`
}

type stationMetadata struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// FetchSnapshot fetches all stations with a current AQI reading inside the
// bounding box. Stations reporting "-" or an empty AQI are skipped.
func (c *Client) FetchSnapshot(ctx context.Context, bounds BoundingBox) (*airquality.Snapshot, error) {
	u := fmt.Sprintf("%s/map/bounds/?token=%s&latlng=%s", c.baseURL, url.QueryEscape(c.token),
		fmt.Sprintf("%g,%g,%g,%g", bounds.South, bounds.West, bounds.North, bounds.East))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating WAQI request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", airquality.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: WAQI returned status %d", airquality.ErrProviderUnavailable, resp.StatusCode)
	}

	var body boundsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding WAQI response: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("%w: WAQI status %q", airquality.ErrProviderUnavailable, body.Status)
	}

	readings := make([]airquality.StationReading, 0, len(body.Data))
	for _, s := range body.Data {
		aqi, ok := parseAQI(s.AQI)
		if !ok {
			continue
		}
		observedAt := time.Time{}
		if t, err := time.Parse(time.RFC3339, s.Station.Time); err == nil {
			observedAt = t
		}
		readings = append(readings, airquality.StationReading{
			StationID:  strconv.Itoa(s.UID),
			Name:       s.Station.Name,
			Lat:        s.Lat,
			Lon:        s.Lon,
			AQI:        aqi,
			ObservedAt: observedAt,
		})
	}

	return airquality.NewSnapshot(ProviderName, readings), nil
}

// parseAQI parses the AQI field, which WAQI reports as a string and sets to
// "-" for stations without a current reading.
func parseAQI(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// BoundedProvider pins a client to a fixed bounding box so it satisfies
// airquality.Provider.
type BoundedProvider struct {
	client *Client
	bounds BoundingBox
}

// NewBoundedProvider creates a provider that always fetches the given bounds.
func NewBoundedProvider(client *Client, bounds BoundingBox) *BoundedProvider {
	return &BoundedProvider{client: client, bounds: bounds}
}

// FetchSnapshot implements airquality.Provider.
func (p *BoundedProvider) FetchSnapshot(ctx context.Context) (*airquality.Snapshot, error) {
	return p.client.FetchSnapshot(ctx, p.bounds)
}
