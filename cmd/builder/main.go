// Package main provides the offline graph builder. It turns an
// OpenStreetMap extract, an NDVI grid, and a station snapshot into the
// enriched GeoJSON graph the API server routes over.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/airquality"
	"github.com/greenroute/greenroute/internal/airquality/waqi"
	"github.com/greenroute/greenroute/internal/database"
	"github.com/greenroute/greenroute/internal/enrich"
	"github.com/greenroute/greenroute/internal/geo"
	"github.com/greenroute/greenroute/internal/graph"
	gosm "github.com/greenroute/greenroute/internal/osm"
	"github.com/greenroute/greenroute/internal/raster"
)

var (
	osmFile     = flag.String("osm", "", "OpenStreetMap PBF extract (required)")
	ndviFile    = flag.String("ndvi", "", "NDVI grid file; omit to fall back to the default NDVI everywhere")
	outFile     = flag.String("out", "graph.geojson", "output path for the enriched GeoJSON graph")
	waqiToken   = flag.String("waqi-token", os.Getenv("WAQI_TOKEN"), "WAQI API token; omit to enrich with the default AQI")
	workers     = flag.Int("workers", runtime.NumCPU(), "enrichment worker count")
	lineSamples = flag.Int("line-samples", 5, "NDVI sample points per edge")
	timeout     = flag.Duration("timeout", 30*time.Minute, "overall build timeout")
)

func main() {
	flag.Parse()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "greenroute-builder").
		Logger()

	if *osmFile == "" {
		log.Fatal().Msg("-osm is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()

	g, err := parseExtract(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing extract failed")
	}

	sampler, err := loadSampler(log)
	if err != nil {
		log.Fatal().Err(err).Msg("loading NDVI grid failed")
	}

	snapshot := fetchSnapshot(ctx, log)

	enricher := enrich.NewEnricher(
		sampler,
		airquality.NewInterpolator(airquality.InterpolatorConfig{}),
		enrich.Config{Workers: *workers, Logger: log},
	)
	if err := enricher.Enrich(ctx, g, snapshot); err != nil {
		log.Fatal().Err(err).Msg("enrichment failed")
	}

	if err := writeGraph(g); err != nil {
		log.Fatal().Err(err).Str("path", *outFile).Msg("writing graph failed")
	}

	log.Info().
		Int("nodes", g.NumNodes()).
		Int("edges", g.NumEdges()).
		Str("path", *outFile).
		Dur("elapsed", time.Since(start)).
		Msg("enriched graph written")
}

func parseExtract(ctx context.Context, log zerolog.Logger) (*graph.Graph, error) {
	f, err := os.Open(*osmFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parser := gosm.NewParser(gosm.ParserConfig{Logger: log})
	return parser.Parse(ctx, f)
}

// loadSampler loads the NDVI grid when one was given. A nil grid means every
// edge takes the default NDVI during enrichment.
func loadSampler(log zerolog.Logger) (enrich.GreennessSampler, error) {
	if *ndviFile == "" {
		log.Warn().Msg("no NDVI grid given, edges take the default NDVI")
		return emptySampler{}, nil
	}

	grid, err := raster.LoadGridFile(*ndviFile)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", *ndviFile).Msg("NDVI grid loaded")
	return raster.NewSampler(grid, raster.SamplerConfig{
		LineSamples: *lineSamples,
		Logger:      log,
	}), nil
}

// fetchSnapshot fetches current station readings. When the fetch is not
// possible it falls back to the last persisted snapshot, then to an empty
// one; enrichment substitutes the default AQI per edge.
func fetchSnapshot(ctx context.Context, log zerolog.Logger) *airquality.Snapshot {
	if *waqiToken != "" {
		client := waqi.NewClient(waqi.ClientConfig{Token: *waqiToken})
		snapshot, err := client.FetchSnapshot(ctx, waqi.BengaluruBounds)
		if err == nil {
			log.Info().Int("stations", snapshot.Len()).Msg("station snapshot fetched")
			return snapshot
		}
		log.Warn().Err(err).Msg("station fetch failed")
	} else {
		log.Warn().Msg("no WAQI token given")
	}

	if snapshot := persistedSnapshot(ctx, log); snapshot != nil {
		return snapshot
	}

	log.Warn().Msg("no station data available, edges take the default AQI")
	return airquality.NewSnapshot("none", nil)
}

// persistedSnapshot loads the last stored snapshot when a database is
// configured.
func persistedSnapshot(ctx context.Context, log zerolog.Logger) *airquality.Snapshot {
	if os.Getenv("DB_ENABLED") != "true" {
		return nil
	}

	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable for snapshot fallback")
		return nil
	}
	defer pool.Close()

	snapshot, err := airquality.NewPostgresRepository(pool).Latest(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no persisted snapshot")
		return nil
	}
	log.Info().
		Int("stations", snapshot.Len()).
		Time("fetched_at", snapshot.FetchedAt).
		Msg("using persisted station snapshot")
	return snapshot
}

func writeGraph(g *graph.Graph) error {
	f, err := os.Create(*outFile)
	if err != nil {
		return err
	}
	if err := graph.WriteGeoJSON(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// emptySampler always reports no coverage, forcing the NDVI fallback.
type emptySampler struct{}

func (emptySampler) SampleLine(geo.LineString) (float64, error) {
	return 0, raster.ErrOutOfBounds
}
