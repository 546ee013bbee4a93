// Package main provides the entrypoint for the GreenRoute API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/greenroute/greenroute/internal/airquality"
	"github.com/greenroute/greenroute/internal/airquality/waqi"
	"github.com/greenroute/greenroute/internal/api"
	"github.com/greenroute/greenroute/internal/api/handler"
	"github.com/greenroute/greenroute/internal/api/middleware"
	"github.com/greenroute/greenroute/internal/cost"
	"github.com/greenroute/greenroute/internal/database"
	"github.com/greenroute/greenroute/internal/graph"
	"github.com/greenroute/greenroute/internal/poi"
	"github.com/greenroute/greenroute/internal/routing"
	"github.com/greenroute/greenroute/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "greenroute-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting GreenRoute API")

	port := getEnvOrDefault("APP_PORT", "8080")
	env := getEnvOrDefault("APP_ENV", "development")
	otlpEndpoint := getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// The enriched road graph is built offline by the builder binary.
	graphPath := os.Getenv("GRAPH_PATH")
	if graphPath == "" {
		log.Fatal().Msg("GRAPH_PATH is required")
	}
	g, err := loadGraph(graphPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", graphPath).Msg("failed to load road graph")
	}
	log.Info().
		Int("nodes", g.NumNodes()).
		Int("edges", g.NumEdges()).
		Msg("road graph loaded")

	engine := routing.NewEngine(g, routing.EngineConfig{
		Cost:   costConfigFromEnv(),
		Logger: log,
	})

	// Optional Postgres persistence for station snapshots.
	var pool *pgxpool.Pool
	var snapshotRepo airquality.SnapshotRepository
	if os.Getenv("DB_ENABLED") == "true" {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		snapshotRepo = airquality.NewPostgresRepository(pool)
		log.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Msg("database connected")
	}

	waqiToken := os.Getenv("WAQI_TOKEN")
	if waqiToken == "" {
		log.Warn().Msg("WAQI_TOKEN not set, station data will be unavailable")
	}
	aqProvider := waqi.NewBoundedProvider(
		waqi.NewClient(waqi.ClientConfig{Token: waqiToken}),
		waqi.BengaluruBounds,
	)
	aqService := airquality.NewService(airquality.ServiceConfig{
		Provider:   aqProvider,
		Repository: snapshotRepo,
		Logger:     log,
	})

	pois, err := loadPOIs(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load POI layers")
	}

	readyChecks := map[string]handler.ReadyCheck{
		"graph": func() error {
			if g.NumEdges() == 0 {
				return errors.New("road graph is empty")
			}
			return nil
		},
	}
	if pool != nil {
		readyChecks["database"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		ServiceName: serviceName,
		Logger:      log,
		Metrics:     metrics,
		Engine:      engine,
		AirQuality:  aqService,
		POIs:        pois,
		ReadyChecks: readyChecks,
	})

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// loadGraph reads the enriched GeoJSON graph from disk.
func loadGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return graph.ReadGeoJSON(f)
}

// costConfigFromEnv reads the cost weights, falling back to the defaults
// when unset.
func costConfigFromEnv() cost.Config {
	var cfg cost.Config
	if v, err := strconv.ParseFloat(os.Getenv("GREENNESS_WEIGHT"), 64); err == nil {
		cfg.GreennessWeight = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("POLLUTION_WEIGHT"), 64); err == nil {
		cfg.PollutionWeight = v
	}
	return cfg
}

// loadPOIs loads the configured POI layers into one index. Returns nil when
// no layer is configured so responses simply omit POIs.
func loadPOIs(log zerolog.Logger) (*poi.Index, error) {
	layers := []struct {
		env      string
		category poi.Category
	}{
		{"POI_PARKS_PATH", poi.CategoryPark},
		{"POI_EV_PATH", poi.CategoryEVCharging},
		{"POI_METRO_PATH", poi.CategoryMetro},
	}

	var all []poi.POI
	for _, layer := range layers {
		path := os.Getenv(layer.env)
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", layer.env, err)
		}
		pois, err := poi.ReadGeoJSON(f, layer.category)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", layer.env, err)
		}
		log.Info().
			Str("category", string(layer.category)).
			Int("count", len(pois)).
			Msg("POI layer loaded")
		all = append(all, pois...)
	}

	if len(all) == 0 {
		return nil, nil
	}
	return poi.NewIndex(all), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
