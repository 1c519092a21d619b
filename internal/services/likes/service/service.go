// Package service drives the likes backfill: fan the legacy liked_by array
// out into one post_likes row per (post, user) pair
package service

import (
	"context"
	"encoding/json"
	"strings"

	"backstitch/internal/modkit/repokit"
	perr "backstitch/internal/platform/errors"
	"backstitch/internal/platform/logger"
	"backstitch/internal/services/likes/domain"
	runsdom "backstitch/internal/services/runs/domain"
)

// Config holds configuration options for the likes backfill
type Config struct {
	// DryRun reports what would be written without writing
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

// New constructs the likes backfill service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], rec runsdom.RecorderPort, cfg Config) *Service {
	if db == nil {
		panic("likes.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("likes.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Runs: rec, Cfg: cfg}
}

// Run scans every post with a non-empty legacy liked_by array and performs an
// insert-if-absent write per usable entry. The store's composite-key conflict
// handling is the only concurrency primitive: however many times a pair shows
// up, in one array or across reruns, exactly one row exists afterwards.
// Per-post failures are logged and counted as skipped; only setup failures
// abort the run
func (s *Service) Run(ctx context.Context) (domain.Report, error) {
	repo := s.Binder.Bind(s.DB)

	if err := repo.Guard(ctx); err != nil {
		return domain.Report{}, err
	}

	runID := ""
	if s.Runs != nil && !s.Cfg.DryRun {
		runID = s.Runs.Begin(ctx, "likes")
		ctx = logger.WithRun(ctx, runID)
	}

	it, err := repo.ScanLegacyLikes(ctx)
	if err != nil {
		s.finish(ctx, runID, domain.Report{}, err)
		return domain.Report{}, err
	}
	defer it.Close()

	var rep domain.Report
	for {
		p, ok, err := it.Next()
		if err != nil {
			s.finish(ctx, runID, rep, err)
			return rep, err
		}
		if !ok {
			break
		}
		if s.Cfg.MaxPosts > 0 && rep.Posts >= s.Cfg.MaxPosts {
			logger.C(ctx).Info().Int("max_posts", s.Cfg.MaxPosts).Msg("post cap reached; stopping early")
			break
		}
		rep.Posts++

		inserted, deduped, err := s.migratePost(ctx, repo, p)
		rep.Inserted += inserted
		rep.Deduped += deduped
		if err != nil {
			logger.C(ctx).Error().Err(err).Str("id", p.PostID).Msg("likes migration failed for post; skipping")
			rep.Skipped++
			continue
		}
		logger.C(ctx).Info().Str("id", p.PostID).Int("inserted", inserted).Int("deduped", deduped).
			Msg("post likes migrated")
	}

	s.finish(ctx, runID, rep, nil)
	return rep, nil
}

// migratePost walks one record's legacy entries. Null, blank, and non-string
// entries are filtered silently; they are expected legacy debris, not errors
func (s *Service) migratePost(ctx context.Context, repo domain.StorageRepo, p domain.LegacyLikes) (inserted, deduped int, err error) {
	var entries []any
	if len(p.Raw) > 0 {
		if err := json.Unmarshal(p.Raw, &entries); err != nil {
			return 0, 0, perr.Wrapf(err, perr.ErrorCodeValidation, "decode liked_by for %s", p.PostID)
		}
	}

	for _, e := range entries {
		userID, ok := e.(string)
		if !ok || strings.TrimSpace(userID) == "" {
			continue
		}

		if s.Cfg.DryRun {
			logger.C(ctx).Info().Str("id", p.PostID).Str("user", userID).Msg("dry-run: would insert like")
			continue
		}

		created, err := repo.InsertLike(ctx, p.PostID, userID)
		if err != nil {
			return inserted, deduped, err
		}
		if created {
			inserted++
		} else {
			deduped++
		}
	}
	return inserted, deduped, nil
}

func (s *Service) finish(ctx context.Context, runID string, rep domain.Report, err error) {
	if s.Runs == nil || runID == "" {
		return
	}
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	s.Runs.Finish(ctx, runID, runsdom.Finish{Migrated: rep.Inserted, Skipped: rep.Skipped, ErrText: errText})
}
