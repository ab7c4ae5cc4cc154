package syncstate

import (
	"context"
	"time"
)

// Repository persists the debounce state. AcquireRun must be atomic:
// when two callers race, exactly one observes acquired=true per
// debounce window.
type Repository interface {
	// AcquireRun sets last_run_at to now only when the previous value
	// is unset or at least minInterval old. It returns whether the
	// caller won the slot and the value last_run_at held before the
	// attempt, so a failed run can hand the slot back via Restore.
	AcquireRun(ctx context.Context, now time.Time, minInterval time.Duration) (acquired bool, previous *time.Time, err error)

	// Restore puts a previously observed last_run_at back, releasing
	// a slot taken by AcquireRun when the run aborted before writing.
	Restore(ctx context.Context, previous *time.Time) error

	// Touch unconditionally records a completed run.
	Touch(ctx context.Context, ranAt time.Time) error

	Get(ctx context.Context) (State, error)
}
