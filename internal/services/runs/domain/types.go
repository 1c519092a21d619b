// Package domain holds the types and ports for migration run bookkeeping
package domain

import "context"

// Finish captures the terminal counters of one migration run
type Finish struct {
	Migrated int
	Skipped  int
	ErrText  string
}

// RecorderPort records run lifecycle events; implementations are best-effort
// and must never fail the migration they observe
type RecorderPort interface {
	// Begin records the start of a run and returns its id ("" when recording failed)
	Begin(ctx context.Context, kind string) string

	// Finish records the end of a run
	Finish(ctx context.Context, runID string, fin Finish)
}

// StorageRepo is the storage repository interface
type StorageRepo interface {
	InsertRun(ctx context.Context, id, kind string) error
	FinishRun(ctx context.Context, id string, fin Finish) error
}
