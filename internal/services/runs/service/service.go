// Package service provides best-effort migration run bookkeeping
package service

import (
	"context"

	"github.com/google/uuid"

	"backstitch/internal/modkit/repokit"
	"backstitch/internal/platform/logger"
	"backstitch/internal/services/runs/domain"
)

// Service implements domain.RecorderPort over Postgres.
// Bookkeeping failures are logged and swallowed; the run table is an audit
// trail, not a correctness dependency of the migration itself
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
}

// New constructs the run recorder
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo]) *Service {
	if db == nil {
		panic("runs.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("runs.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder}
}

// Begin implements domain.RecorderPort
func (s *Service) Begin(ctx context.Context, kind string) string {
	id := uuid.NewString()
	if err := s.Binder.Bind(s.DB).InsertRun(ctx, id, kind); err != nil {
		logger.C(ctx).Warn().Err(err).Str("kind", kind).Msg("run bookkeeping unavailable; continuing without it")
		return ""
	}
	return id
}

// Finish implements domain.RecorderPort
func (s *Service) Finish(ctx context.Context, runID string, fin domain.Finish) {
	if runID == "" {
		return
	}
	if err := s.Binder.Bind(s.DB).FinishRun(ctx, runID, fin); err != nil {
		logger.C(ctx).Warn().Err(err).Str("run_id", runID).Msg("could not finish run bookkeeping")
	}
}

// Nop returns a recorder that records nothing (dry runs, tests)
func Nop() domain.RecorderPort { return nop{} }

type nop struct{}

func (nop) Begin(context.Context, string) string          { return "" }
func (nop) Finish(context.Context, string, domain.Finish) {}
