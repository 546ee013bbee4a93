package airquality

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for air quality data providers.
type Provider interface {
	// FetchSnapshot fetches the current set of station readings.
	FetchSnapshot(ctx context.Context) (*Snapshot, error)
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Provider is the air quality data provider.
	Provider Provider

	// Repository persists fetched snapshots. Optional.
	Repository SnapshotRepository

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache a snapshot (default: 15 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors
	// (default: 2 hours).
	StaleIfErrorTTL time.Duration
}

// Service provides station snapshots with caching and stale-if-error
// fallback. Snapshots are immutable; a successful fetch replaces the cached
// snapshot wholesale.
type Service struct {
	provider        Provider
	repository      SnapshotRepository
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu          sync.RWMutex
	snapshot    *Snapshot
	cacheExpiry time.Time
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 2 * time.Hour
	}

	return &Service{
		provider:        cfg.Provider,
		repository:      cfg.Repository,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
	}
}

// CurrentSnapshot returns the current station snapshot, fetching from the
// provider when the cache has expired.
func (s *Service) CurrentSnapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	if s.snapshot != nil && time.Now().Before(s.cacheExpiry) {
		snapshot := s.snapshot
		s.mu.RUnlock()
		return snapshot, nil
	}
	s.mu.RUnlock()

	return s.refresh(ctx, false)
}

// Refresh forces a provider fetch, replacing the cached snapshot.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.refresh(ctx, true)
}

func (s *Service) refresh(ctx context.Context, force bool) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check under the write lock.
	if !force && s.snapshot != nil && time.Now().Before(s.cacheExpiry) {
		return s.snapshot, nil
	}

	snapshot, err := s.provider.FetchSnapshot(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch station snapshot")

		// Stale-if-error: keep serving the previous snapshot for a while.
		if s.snapshot != nil && time.Since(s.snapshot.FetchedAt) < s.staleIfErrorTTL {
			s.logger.Warn().
				Time("fetched_at", s.snapshot.FetchedAt).
				Msg("serving stale station snapshot due to provider error")
			return s.snapshot, nil
		}
		return nil, err
	}

	s.snapshot = snapshot
	s.cacheExpiry = time.Now().Add(s.cacheTTL)
	s.logger.Info().
		Int("stations", snapshot.Len()).
		Str("provider", snapshot.Provider).
		Msg("station snapshot refreshed")

	if s.repository != nil {
		if err := s.repository.Save(ctx, snapshot); err != nil {
			s.logger.Error().Err(err).Msg("failed to persist station snapshot")
		}
	}

	return snapshot, nil
}
