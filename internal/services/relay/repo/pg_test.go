package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cardrelay/internal/modkit/repokit"
	perr "cardrelay/internal/platform/errors"
	kit "cardrelay/internal/platform/testkit"
)

type fakeTag struct{ n int64 }

func (f fakeTag) String() string      { return "INSERT" }
func (f fakeTag) RowsAffected() int64 { return f.n }

type row struct {
	name     string
	category *string
	thread   *int32
}

type fakeRows struct {
	rows []row
	i    int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.rows) }
func (r *fakeRows) Scan(dst ...any) error {
	cur := r.rows[r.i-1]
	*(dst[0].(*string)) = cur.name
	*(dst[1].(**string)) = cur.category
	*(dst[2].(**int32)) = cur.thread
	return nil
}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

// fakeQ records every statement
type fakeQ struct {
	sql      []string
	affected int64
	err      error
	rows     []row
}

func (f *fakeQ) Exec(_ context.Context, sql string, _ ...any) (repokit.CommandTag, error) {
	f.sql = append(f.sql, sql)
	return fakeTag{f.affected}, f.err
}

func (f *fakeQ) Query(_ context.Context, sql string, _ ...any) (repokit.Rows, error) {
	f.sql = append(f.sql, sql)
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeQ) QueryRow(context.Context, string, ...any) repokit.Row { return nil }

func ptr[T any](v T) *T { return &v }

func TestPG_Get(t *testing.T) {
	q := &fakeQ{rows: []row{
		{name: "Находки", category: ptr("Куртки"), thread: ptr(int32(11))},
		{name: "Находки", category: ptr("Футболки"), thread: ptr(int32(12))},
	}}
	s := NewPG().Bind(q)
	rec, ok, err := s.Get(context.Background(), -1001)
	if err != nil || !ok {
		t.Fatalf("Get = %v %v", ok, err)
	}
	if rec.Name != "Находки" || rec.Threads["Куртки"] != 11 || rec.Threads["Футболки"] != 12 {
		t.Fatalf("rec = %+v", rec)
	}
	kit.MustContain(t, q.sql[0], "LEFT JOIN relay_threads")
}

func TestPG_GetChatWithoutThreads(t *testing.T) {
	q := &fakeQ{rows: []row{{name: "Пусто"}}}
	rec, ok, err := NewPG().Bind(q).Get(context.Background(), 1)
	if err != nil || !ok || rec.Name != "Пусто" || len(rec.Threads) != 0 || rec.Threads == nil {
		t.Fatalf("Get = %+v %v %v", rec, ok, err)
	}

	rec, ok, err = NewPG().Bind(&fakeQ{}).Get(context.Background(), 1)
	if err != nil || ok {
		t.Fatalf("missing chat Get = %+v %v %v", rec, ok, err)
	}
}

func TestPG_Writes(t *testing.T) {
	ctx := context.Background()

	q := &fakeQ{affected: 1}
	s := NewPG().Bind(q)
	if created, err := s.Register(ctx, 1, "x"); err != nil || !created {
		t.Fatalf("Register = %v %v", created, err)
	}
	if err := s.Put(ctx, 1, "Куртки", 11); err != nil {
		t.Fatalf("Put = %v", err)
	}
	if removed, err := s.Remove(ctx, 1); err != nil || !removed {
		t.Fatalf("Remove = %v %v", removed, err)
	}
	kit.MustContain(t, q.sql[0], "ON CONFLICT (chat_id) DO NOTHING")
	kit.MustContain(t, q.sql[1], "DO UPDATE SET thread_id")

	q0 := &fakeQ{affected: 0}
	s = NewPG().Bind(q0)
	if created, _ := s.Register(ctx, 1, "x"); created {
		t.Fatalf("Register on conflict should report existing")
	}
	if err := s.Put(ctx, 1, "Куртки", 11); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("Put on unknown chat = %v", err)
	}
	if removed, _ := s.Remove(ctx, 1); removed {
		t.Fatalf("Remove of unknown chat should report false")
	}
}

func TestPG_ErrorsAreWrapped(t *testing.T) {
	q := &fakeQ{err: errors.New("conn reset")}
	s := NewPG().Bind(q)
	if _, _, err := s.Get(context.Background(), 1); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("Get err = %v", err)
	}
	if err := EnsureSchema(context.Background(), q); err == nil || !strings.Contains(err.Error(), "ensure relay schema") {
		t.Fatalf("EnsureSchema err = %v", err)
	}
}
