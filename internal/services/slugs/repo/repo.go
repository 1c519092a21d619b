// Package repo provides postgres access for the slug backfill
package repo

import (
	"context"

	"backstitch/internal/modkit/repokit"
	perr "backstitch/internal/platform/errors"
	"backstitch/internal/services/slugs/domain"
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

// Guard verifies the posts table exists
func (r *queries) Guard(ctx context.Context) error {
	var reg *string
	if err := r.q.QueryRow(ctx, `SELECT to_regclass('public.posts')::text`).Scan(&reg); err != nil {
		return perr.FromPostgres(err, "guard posts")
	}
	if reg == nil {
		return perr.NotFoundf("posts table does not exist")
	}
	return nil
}

// ScanMissingSlug opens a cursor over posts whose slug is null or empty.
// The result set is lazy; rows stream from the server as the iterator advances
func (r *queries) ScanMissingSlug(ctx context.Context) (domain.PostIter, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, COALESCE(title, ''), COALESCE(slug, '')
		FROM posts
		WHERE slug IS NULL OR slug = ''
		ORDER BY id
	`)
	if err != nil {
		return nil, perr.FromPostgres(err, "scan posts missing slug")
	}
	return &postIter{rows: rows}, nil
}

// SlugTaken probes for any *other* post already holding slug
func (r *queries) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var taken bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)
	`, slug, excludeID).Scan(&taken)
	if err != nil {
		return false, perr.FromPostgres(err, "probe slug")
	}
	return taken, nil
}

// ClaimSlug writes the slug in a single conditional statement so the
// probe-then-write pair cannot race another writer into a duplicate.
// Zero rows affected means the slug was claimed elsewhere in the meantime
// (or the post is gone); the caller re-probes with the next suffix
func (r *queries) ClaimSlug(ctx context.Context, id, slug string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE posts
		SET slug = $2
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM posts p WHERE p.slug = $2 AND p.id <> $1)
	`, id, slug)
	if err != nil {
		// a unique index on slug turns the same race into 23505; same meaning
		if perr.IsDuplicateKey(err) {
			return false, nil
		}
		return false, perr.FromPostgres(err, "claim slug")
	}
	return tag.RowsAffected() > 0, nil
}

type postIter struct {
	rows repokit.Rows
}

func (it *postIter) Next() (domain.Post, bool, error) {
	if !it.rows.Next() {
		return domain.Post{}, false, it.rows.Err()
	}
	var p domain.Post
	if err := it.rows.Scan(&p.ID, &p.Title, &p.Slug); err != nil {
		return domain.Post{}, false, perr.FromPostgres(err, "scan post row")
	}
	return p, true, nil
}

func (it *postIter) Close() { it.rows.Close() }
