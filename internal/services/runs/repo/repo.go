// Package repo provides postgres access for migration run bookkeeping
package repo

import (
	"context"

	"backstitch/internal/modkit/repokit"
	perr "backstitch/internal/platform/errors"
	"backstitch/internal/services/runs/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// InsertRun records the start of a run (idempotent on id)
func (r *queries) InsertRun(ctx context.Context, id, kind string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO migration_runs (id, kind, started_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO NOTHING
	`, id, kind)
	return perr.FromPostgres(err, "insert migration run")
}

// FinishRun records the end of a run
func (r *queries) FinishRun(ctx context.Context, id string, fin domain.Finish) error {
	_, err := r.q.Exec(ctx, `
		UPDATE migration_runs SET
			finished_at = now(),
			migrated = $2,
			skipped = $3,
			error = NULLIF($4, '')
		WHERE id = $1
	`, id, fin.Migrated, fin.Skipped, fin.ErrText)
	return perr.FromPostgres(err, "finish migration run")
}
