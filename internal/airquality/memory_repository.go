package airquality

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory SnapshotRepository for tests and local
// development.
type MemoryRepository struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewMemoryRepository creates a new in-memory snapshot repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Save stores the snapshot, replacing any previous one.
func (r *MemoryRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot
	return nil
}

// Latest returns the last saved snapshot.
func (r *MemoryRepository) Latest(ctx context.Context) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return nil, ErrNoStationData
	}
	return r.snapshot, nil
}
