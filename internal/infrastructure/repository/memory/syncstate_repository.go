package memory

import (
	"context"
	"sync"
	"time"

	"github.com/biplovsubedi/prediction-league/internal/domain/syncstate"
)

// SyncStateRepository keeps the debounce record under one mutex so
// AcquireRun is a true check-and-set even with the scheduler and an
// on-demand trigger racing.
type SyncStateRepository struct {
	mu        sync.Mutex
	lastRunAt *time.Time
}

func NewSyncStateRepository() *SyncStateRepository {
	return &SyncStateRepository{}
}

func (r *SyncStateRepository) AcquireRun(_ context.Context, now time.Time, minInterval time.Duration) (bool, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := cloneTime(r.lastRunAt)
	if previous != nil && now.Sub(*previous) < minInterval {
		return false, previous, nil
	}

	stamped := now
	r.lastRunAt = &stamped
	return true, previous, nil
}

func (r *SyncStateRepository) Restore(_ context.Context, previous *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRunAt = cloneTime(previous)
	return nil
}

func (r *SyncStateRepository) Touch(_ context.Context, ranAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamped := ranAt
	r.lastRunAt = &stamped
	return nil
}

func (r *SyncStateRepository) Get(_ context.Context) (syncstate.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return syncstate.State{LastRunAt: cloneTime(r.lastRunAt)}, nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
