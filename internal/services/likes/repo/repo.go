// Package repo provides postgres access for the likes backfill
package repo

import (
	"context"

	"backstitch/internal/modkit/repokit"
	perr "backstitch/internal/platform/errors"
	"backstitch/internal/services/likes/domain"
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

// Guard verifies both tables this backfill touches exist
func (r *queries) Guard(ctx context.Context) error {
	for _, tbl := range []string{"posts", "post_likes"} {
		var reg *string
		if err := r.q.QueryRow(ctx, `SELECT to_regclass('public.`+tbl+`')::text`).Scan(&reg); err != nil {
			return perr.FromPostgresf(err, "guard %s", tbl)
		}
		if reg == nil {
			return perr.NotFoundf("%s table does not exist", tbl)
		}
	}
	return nil
}

// ScanLegacyLikes opens a cursor over posts whose liked_by array has entries.
// Non-array liked_by values pass the filter on purpose: jsonb_array_length
// raises on them, and the CASE keeps it off that path, so corrupt records
// reach the decoder and get skipped one by one instead of killing the cursor
func (r *queries) ScanLegacyLikes(ctx context.Context) (domain.LikesIter, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, liked_by
		FROM posts
		WHERE liked_by IS NOT NULL
		  AND CASE WHEN jsonb_typeof(liked_by) = 'array'
		           THEN jsonb_array_length(liked_by) > 0
		           ELSE TRUE END
		ORDER BY id
	`)
	if err != nil {
		return nil, perr.FromPostgres(err, "scan legacy likes")
	}
	return &likesIter{rows: rows}, nil
}

// InsertLike is the atomic insert-if-absent write keyed by (post_id, user_id).
// created_at is set only on first creation; the row is never updated after
func (r *queries) InsertLike(ctx context.Context, postID, userID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, postID, userID)
	if err != nil {
		// a concurrent writer can still surface 23505 under serializable
		// isolation or a partial-index mismatch; it just means already migrated
		if perr.IsDuplicateKey(err) {
			return false, nil
		}
		return false, perr.FromPostgresf(err, "insert like %s/%s", postID, userID)
	}
	return tag.RowsAffected() > 0, nil
}

type likesIter struct {
	rows repokit.Rows
}

func (it *likesIter) Next() (domain.LegacyLikes, bool, error) {
	if !it.rows.Next() {
		return domain.LegacyLikes{}, false, it.rows.Err()
	}
	var p domain.LegacyLikes
	if err := it.rows.Scan(&p.PostID, &p.Raw); err != nil {
		return domain.LegacyLikes{}, false, perr.FromPostgres(err, "scan likes row")
	}
	return p, true, nil
}

func (it *likesIter) Close() { it.rows.Close() }
