package airquality

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of SnapshotRepository.
//
// Schema:
//
//	CREATE TABLE station_readings (
//	    snapshot_id  BIGINT       NOT NULL,
//	    station_id   TEXT         NOT NULL,
//	    name         TEXT         NOT NULL,
//	    lat          DOUBLE PRECISION NOT NULL,
//	    lon          DOUBLE PRECISION NOT NULL,
//	    aqi          DOUBLE PRECISION NOT NULL,
//	    observed_at  TIMESTAMPTZ  NOT NULL,
//	    provider     TEXT         NOT NULL,
//	    fetched_at   TIMESTAMPTZ  NOT NULL,
//	    PRIMARY KEY (snapshot_id, station_id)
//	);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL snapshot repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save persists the snapshot's readings in a single transaction.
func (r *PostgresRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snapshotID := snapshot.FetchedAt.UnixNano()
	for _, reading := range snapshot.Readings() {
		_, err := tx.Exec(ctx, `
			INSERT INTO station_readings
				(snapshot_id, station_id, name, lat, lon, aqi, observed_at, provider, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (snapshot_id, station_id) DO NOTHING
		`, snapshotID, reading.StationID, reading.Name, reading.Lat, reading.Lon,
			reading.AQI, reading.ObservedAt, snapshot.Provider, snapshot.FetchedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Latest returns the most recently fetched snapshot.
func (r *PostgresRepository) Latest(ctx context.Context) (*Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT station_id, name, lat, lon, aqi, observed_at, provider, fetched_at
		FROM station_readings
		WHERE snapshot_id = (SELECT MAX(snapshot_id) FROM station_readings)
		ORDER BY station_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []StationReading
	var provider string
	var fetchedAt time.Time

	for rows.Next() {
		var reading StationReading
		if err := rows.Scan(
			&reading.StationID,
			&reading.Name,
			&reading.Lat,
			&reading.Lon,
			&reading.AQI,
			&reading.ObservedAt,
			&provider,
			&fetchedAt,
		); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNoStationData
		}
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrNoStationData
	}

	snapshot := NewSnapshot(provider, readings)
	snapshot.FetchedAt = fetchedAt
	return snapshot, nil
}
