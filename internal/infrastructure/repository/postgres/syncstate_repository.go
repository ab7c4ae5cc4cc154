package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/biplovsubedi/prediction-league/internal/domain/syncstate"
)

type SyncStateRepository struct {
	db *sqlx.DB
}

func NewSyncStateRepository(db *sqlx.DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

type acquireRunRow struct {
	Previous *time.Time `db:"previous"`
	Acquired bool       `db:"acquired"`
}

// AcquireRun claims the debounce slot with one conditional UPDATE, so
// two racing callers resolve inside the database rather than with a
// read-then-write pair.
func (r *SyncStateRepository) AcquireRun(ctx context.Context, now time.Time, minInterval time.Duration) (bool, *time.Time, error) {
	const query = `
		WITH previous AS (
			SELECT last_run_at FROM sync_state WHERE id = 1
		), claimed AS (
			UPDATE sync_state
			SET last_run_at = $1
			WHERE id = 1 AND (last_run_at IS NULL OR last_run_at <= $2)
			RETURNING 1
		)
		SELECT
			(SELECT last_run_at FROM previous) AS previous,
			EXISTS (SELECT 1 FROM claimed) AS acquired`

	var row acquireRunRow
	cutoff := now.Add(-minInterval)
	if err := r.db.GetContext(ctx, &row, query, now, cutoff); err != nil {
		return false, nil, fmt.Errorf("acquire sync run: %w", err)
	}

	return row.Acquired, row.Previous, nil
}

func (r *SyncStateRepository) Restore(ctx context.Context, previous *time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sync_state SET last_run_at = $1 WHERE id = 1`, previous); err != nil {
		return fmt.Errorf("restore sync state: %w", err)
	}

	return nil
}

func (r *SyncStateRepository) Touch(ctx context.Context, ranAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sync_state SET last_run_at = $1 WHERE id = 1`, ranAt); err != nil {
		return fmt.Errorf("touch sync state: %w", err)
	}

	return nil
}

func (r *SyncStateRepository) Get(ctx context.Context) (syncstate.State, error) {
	var lastRunAt *time.Time
	err := r.db.GetContext(ctx, &lastRunAt, `SELECT last_run_at FROM sync_state WHERE id = 1`)
	if isNotFound(err) {
		return syncstate.State{}, nil
	}
	if err != nil {
		return syncstate.State{}, fmt.Errorf("select sync state: %w", err)
	}

	return syncstate.State{LastRunAt: lastRunAt}, nil
}
