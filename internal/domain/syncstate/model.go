package syncstate

import "time"

// State is the singleton debounce record for the sync orchestrator.
// LastRunAt is nil before the first successful run.
type State struct {
	LastRunAt *time.Time
}
