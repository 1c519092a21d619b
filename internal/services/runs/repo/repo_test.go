package repo

import (
	"context"
	"strings"
	"testing"

	"backstitch/internal/platform/store"
	"backstitch/internal/services/runs/domain"
)

type fakeTag struct{}

func (fakeTag) String() string      { return "" }
func (fakeTag) RowsAffected() int64 { return 1 }

type fakeQuerier struct {
	lastSQL  string
	lastArgs []any
	execErr  error
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	q.lastSQL, q.lastArgs = sql, args
	return fakeTag{}, q.execErr
}

func (q *fakeQuerier) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }

func (q *fakeQuerier) QueryRow(context.Context, string, ...any) store.Row { return nil }

func TestInsertRun(t *testing.T) {
	q := &fakeQuerier{}
	if err := NewPG().Bind(q).InsertRun(context.Background(), "id-1", "slugs"); err != nil {
		t.Fatal(err)
	}
	// rerunning with the same id must not error
	if !strings.Contains(q.lastSQL, "ON CONFLICT (id) DO NOTHING") {
		t.Fatalf("insert must be idempotent: %s", q.lastSQL)
	}
	if q.lastArgs[0] != "id-1" || q.lastArgs[1] != "slugs" {
		t.Fatalf("args: %v", q.lastArgs)
	}
}

func TestFinishRun(t *testing.T) {
	q := &fakeQuerier{}
	err := NewPG().Bind(q).FinishRun(context.Background(), "id-1", domain.Finish{
		Migrated: 3, Skipped: 1, ErrText: "",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(q.lastSQL, "NULLIF($4, '')") {
		t.Fatalf("empty error text should store NULL: %s", q.lastSQL)
	}
	if q.lastArgs[1] != 3 || q.lastArgs[2] != 1 {
		t.Fatalf("args: %v", q.lastArgs)
	}
}
