package service

import (
	"context"
	"testing"

	"backstitch/internal/modkit/repokit"
	"backstitch/internal/platform/store"
	"backstitch/internal/services/likes/domain"
	runsdom "backstitch/internal/services/runs/domain"
)

type nopTx struct{}

func (nopTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (nopTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (nopTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (nopTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(nopTx{})
}

type pair struct{ post, user string }

// memRepo is an in-memory StorageRepo backed by a composite-key set
type memRepo struct {
	records  []domain.LegacyLikes
	likes    map[pair]bool
	inserts  int
	guardErr error
}

func newMemRepo(records ...domain.LegacyLikes) *memRepo {
	return &memRepo{records: records, likes: map[pair]bool{}}
}

func (m *memRepo) Guard(context.Context) error { return m.guardErr }

func (m *memRepo) ScanLegacyLikes(context.Context) (domain.LikesIter, error) {
	return &sliceIter{records: m.records}, nil
}

func (m *memRepo) InsertLike(_ context.Context, postID, userID string) (bool, error) {
	m.inserts++
	key := pair{postID, userID}
	if m.likes[key] {
		return false, nil
	}
	m.likes[key] = true
	return true, nil
}

type sliceIter struct {
	records []domain.LegacyLikes
	idx     int
}

func (it *sliceIter) Next() (domain.LegacyLikes, bool, error) {
	if it.idx >= len(it.records) {
		return domain.LegacyLikes{}, false, nil
	}
	r := it.records[it.idx]
	it.idx++
	return r, true, nil
}

func (it *sliceIter) Close() {}

type recorder struct {
	begun    []string
	finished []runsdom.Finish
}

func (r *recorder) Begin(_ context.Context, kind string) string {
	r.begun = append(r.begun, kind)
	return "run-1"
}

func (r *recorder) Finish(_ context.Context, _ string, fin runsdom.Finish) {
	r.finished = append(r.finished, fin)
}

func newService(m *memRepo, cfg Config) (*Service, *recorder) {
	rec := &recorder{}
	binder := repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return m })
	return New(nopTx{}, binder, rec, cfg), rec
}

func TestRunFansOutLikes(t *testing.T) {
	m := newMemRepo(
		domain.LegacyLikes{PostID: "p1", Raw: []byte(`["u1","u2"]`)},
		domain.LegacyLikes{PostID: "p2", Raw: []byte(`["u1"]`)},
	)
	svc, rec := newService(m, Config{})

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Posts != 2 || rep.Inserted != 3 || rep.Deduped != 0 || rep.Skipped != 0 {
		t.Fatalf("report: %+v", rep)
	}
	if !m.likes[pair{"p1", "u1"}] || !m.likes[pair{"p1", "u2"}] || !m.likes[pair{"p2", "u1"}] {
		t.Fatalf("likes: %v", m.likes)
	}
	if len(rec.begun) != 1 || rec.begun[0] != "likes" {
		t.Fatalf("bookkeeping begun: %v", rec.begun)
	}
	if rec.finished[0].Migrated != 3 {
		t.Fatalf("bookkeeping finished: %+v", rec.finished[0])
	}
}

func TestRunFiltersLegacyDebris(t *testing.T) {
	// nulls, blanks, numbers, and in-array duplicates are all expected debris;
	// exactly one row comes out of the lot
	m := newMemRepo(
		domain.LegacyLikes{PostID: "p1", Raw: []byte(`[null, "", "  ", 42, "u1", "u1"]`)},
	)
	svc, _ := newService(m, Config{})

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Inserted != 1 || rep.Deduped != 1 {
		t.Fatalf("report: %+v", rep)
	}
	if len(m.likes) != 1 || !m.likes[pair{"p1", "u1"}] {
		t.Fatalf("likes: %v", m.likes)
	}
}

func TestRunRerunDedupes(t *testing.T) {
	m := newMemRepo(
		domain.LegacyLikes{PostID: "p1", Raw: []byte(`["u1","u2"]`)},
	)
	svc, _ := newService(m, Config{})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Inserted != 0 || rep.Deduped != 2 {
		t.Fatalf("second run report: %+v", rep)
	}
	if len(m.likes) != 2 {
		t.Fatalf("likes grew on rerun: %v", m.likes)
	}
}

func TestRunSkipsMalformedPostAndContinues(t *testing.T) {
	m := newMemRepo(
		domain.LegacyLikes{PostID: "bad", Raw: []byte(`{"not":"an array"}`)},
		domain.LegacyLikes{PostID: "good", Raw: []byte(`["u1"]`)},
	)
	svc, rec := newService(m, Config{})

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("malformed legacy data must not abort the run: %v", err)
	}
	if rep.Posts != 2 || rep.Inserted != 1 || rep.Skipped != 1 {
		t.Fatalf("report: %+v", rep)
	}
	if !m.likes[pair{"good", "u1"}] {
		t.Fatalf("good post not migrated: %v", m.likes)
	}
	if rec.finished[0].Skipped != 1 {
		t.Fatalf("bookkeeping: %+v", rec.finished[0])
	}
}

func TestRunEmptyRawIsHarmless(t *testing.T) {
	m := newMemRepo(domain.LegacyLikes{PostID: "p1", Raw: nil})
	svc, _ := newService(m, Config{})

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Posts != 1 || rep.Inserted != 0 || rep.Skipped != 0 {
		t.Fatalf("report: %+v", rep)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	m := newMemRepo(domain.LegacyLikes{PostID: "p1", Raw: []byte(`["u1"]`)})
	svc, rec := newService(m, Config{DryRun: true})

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Posts != 1 {
		t.Fatalf("report: %+v", rep)
	}
	if m.inserts != 0 {
		t.Fatal("dry run must not write")
	}
	if len(rec.begun) != 0 {
		t.Fatal("dry run must not record bookkeeping")
	}
}

func TestRunMaxPostsCap(t *testing.T) {
	m := newMemRepo(
		domain.LegacyLikes{PostID: "p1", Raw: []byte(`["u1"]`)},
		domain.LegacyLikes{PostID: "p2", Raw: []byte(`["u1"]`)},
		domain.LegacyLikes{PostID: "p3", Raw: []byte(`["u1"]`)},
	)
	svc, _ := newService(m, Config{MaxPosts: 2})

	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Posts != 2 || rep.Inserted != 2 {
		t.Fatalf("report: %+v", rep)
	}
}
