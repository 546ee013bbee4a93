package airquality

import "context"

// SnapshotRepository persists station snapshots so graph builds stay
// reproducible when the provider is unavailable.
type SnapshotRepository interface {
	// Save persists a snapshot's readings.
	Save(ctx context.Context, snapshot *Snapshot) error

	// Latest returns the most recently saved snapshot.
	// Returns ErrNoStationData when nothing has been saved.
	Latest(ctx context.Context) (*Snapshot, error)
}
