// Package service drives the slug backfill: scan, resolve, conditional write
package service

import (
	"context"
	"fmt"

	"backstitch/internal/core/slug"
	"backstitch/internal/modkit/repokit"
	"backstitch/internal/platform/logger"
	runsdom "backstitch/internal/services/runs/domain"
	"backstitch/internal/services/slugs/domain"
)

// Config holds configuration options for the slug backfill
type Config struct {
	// DryRun resolves and reports without writing
	DryRun bool

	// MaxPosts caps how many posts one invocation processes; 0 = unlimited
	MaxPosts int
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Runs   runsdom.RecorderPort
	Cfg    Config
}

// New constructs the slug backfill service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], rec runsdom.RecorderPort, cfg Config) *Service {
	if db == nil {
		panic("slugs.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("slugs.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Runs: rec, Cfg: cfg}
}

// Run scans every post with a missing or empty slug, derives a candidate from
// the title, resolves it to a collection-wide unique value, and writes it with
// a single conditional UPDATE. Per-post failures are logged and counted as
// skipped; only setup failures (schema guard, scan open) abort the run.
// The scan restarts from scratch on every invocation; posts that already hold
// a slug are filtered out server-side, so a rerun performs zero writes
func (s *Service) Run(ctx context.Context) (domain.Report, error) {
	repo := s.Binder.Bind(s.DB)

	if err := repo.Guard(ctx); err != nil {
		return domain.Report{}, err
	}

	runID := ""
	if s.Runs != nil && !s.Cfg.DryRun {
		runID = s.Runs.Begin(ctx, "slugs")
		ctx = logger.WithRun(ctx, runID)
	}

	it, err := repo.ScanMissingSlug(ctx)
	if err != nil {
		s.finish(ctx, runID, domain.Report{}, err)
		return domain.Report{}, err
	}
	defer it.Close()

	var rep domain.Report
	for {
		p, ok, err := it.Next()
		if err != nil {
			// cursor broke mid-stream; everything before this point is committed,
			// a rerun picks up the remainder
			s.finish(ctx, runID, rep, err)
			return rep, err
		}
		if !ok {
			break
		}
		if s.Cfg.MaxPosts > 0 && rep.Scanned >= s.Cfg.MaxPosts {
			logger.C(ctx).Info().Int("max_posts", s.Cfg.MaxPosts).Msg("post cap reached; stopping early")
			break
		}
		rep.Scanned++

		if p.Slug != "" {
			// per-record guard: someone assigned a slug after the scan started
			rep.Skipped++
			continue
		}

		assigned, err := s.resolveAndClaim(ctx, repo, p)
		if err != nil {
			logger.C(ctx).Error().Err(err).Str("id", p.ID).Msg("slug migration failed for post; skipping")
			rep.Skipped++
			continue
		}
		logger.C(ctx).Info().Msgf("%s -> slug: %s", p.ID, assigned)
		rep.Migrated++
	}

	s.finish(ctx, runID, rep, nil)
	return rep, nil
}

// resolveAndClaim turns the title's candidate into a unique slug and claims it.
// The probe is an unbounded linear suffix walk: base, base-1, base-2, ...
// It terminates because the collection is finite. A lost claim race re-enters
// the walk at the next suffix instead of failing the post
func (s *Service) resolveAndClaim(ctx context.Context, repo domain.StorageRepo, p domain.Post) (string, error) {
	base := slug.Make(p.Title)

	for n := 0; ; n++ {
		cand := base
		if n > 0 {
			cand = fmt.Sprintf("%s-%d", base, n)
		}

		taken, err := repo.SlugTaken(ctx, cand, p.ID)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		if s.Cfg.DryRun {
			logger.C(ctx).Info().Str("id", p.ID).Str("slug", cand).Msg("dry-run: would claim slug")
			return cand, nil
		}

		ok, err := repo.ClaimSlug(ctx, p.ID, cand)
		if err != nil {
			return "", err
		}
		if ok {
			return cand, nil
		}
		// conditional write affected zero rows: a concurrent writer claimed
		// cand between probe and write; keep walking
	}
}

func (s *Service) finish(ctx context.Context, runID string, rep domain.Report, err error) {
	if s.Runs == nil || runID == "" {
		return
	}
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	s.Runs.Finish(ctx, runID, runsdom.Finish{Migrated: rep.Migrated, Skipped: rep.Skipped, ErrText: errText})
}
