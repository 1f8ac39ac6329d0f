package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	kit "cardrelay/internal/platform/testkit"
)

type fakeTag struct{ n int64 }

func (f fakeTag) String() string      { return "UPDATE" }
func (f fakeTag) RowsAffected() int64 { return f.n }

type fakeRows struct {
	vals []int
	i    int
	err  error
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.vals) }
func (r *fakeRows) Scan(dst ...any) error {
	*(dst[0].(*int)) = r.vals[r.i-1]
	return nil
}
func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     {}

type fakeRow struct{ v int }

func (r fakeRow) Scan(dst ...any) error { *(dst[0].(*int)) = r.v; return nil }

// fakeTx satisfies TxRunner; pingErr and closed make it a Pinger and closer
type fakeTx struct {
	affected int64
	execErr  error
	rows     *fakeRows
	pingErr  error
	closed   bool
}

func (f *fakeTx) Tx(ctx context.Context, fn func(q RowQuerier) error) error { return fn(f) }
func (f *fakeTx) Exec(context.Context, string, ...any) (CommandTag, error) {
	return fakeTag{f.affected}, f.execErr
}
func (f *fakeTx) Query(context.Context, string, ...any) (Rows, error) { return f.rows, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) Row         { return fakeRow{v: 7} }
func (f *fakeTx) Ping(context.Context) error                          { return f.pingErr }
func (f *fakeTx) Close() error                                        { f.closed = true; return nil }

func TestGuard(t *testing.T) {
	var nilStore *Store
	if err := nilStore.Guard(context.Background()); err == nil {
		t.Fatalf("nil store should return error")
	}
	if err := (&Store{}).Guard(context.Background()); err != nil {
		t.Fatalf("empty store guard: %v", err)
	}
	s := &Store{PG: &fakeTx{pingErr: errors.New("down")}}
	err := s.Guard(context.Background())
	if err == nil || !strings.Contains(err.Error(), "pg: down") {
		t.Fatalf("guard err = %v", err)
	}
}

func TestClose_ClosesPG(t *testing.T) {
	f := &fakeTx{}
	s := &Store{PG: f}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !f.closed {
		t.Fatalf("pg seam not closed")
	}
	var nilStore *Store
	if err := nilStore.Close(context.Background()); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestOpen_NoBackends(t *testing.T) {
	s, err := Open(context.Background(), Config{AppName: "t"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.PG != nil || s.Redis != nil {
		t.Fatalf("disabled backends should stay nil")
	}
}

func TestHelpers(t *testing.T) {
	ctx := context.Background()
	if err := ExecOne(ctx, &fakeTx{affected: 1}, "update"); err != nil {
		t.Fatalf("ExecOne: %v", err)
	}
	if err := ExecOne(ctx, &fakeTx{affected: 0}, "update"); err == nil {
		t.Fatalf("ExecOne should fail on zero rows")
	}
	if err := ExecOne(ctx, &fakeTx{execErr: errors.New("x")}, "update"); err == nil {
		t.Fatalf("ExecOne should propagate exec error")
	}

	v, err := Scalar[int](ctx, &fakeTx{}, "select 7")
	if err != nil || v != 7 {
		t.Fatalf("Scalar = %d, %v", v, err)
	}

	got, err := Many(ctx, &fakeTx{rows: &fakeRows{vals: []int{3, 1, 2}}}, func(r Row) (int, error) {
		var n int
		err := r.Scan(&n)
		return n, err
	}, "select n")
	if err != nil || len(got) != 3 || got[0] != 3 || got[2] != 2 {
		t.Fatalf("Many = %v, %v", got, err)
	}
}

func TestPingWithBackoff(t *testing.T) {
	kit.Swap(t, &sleep, func(time.Duration) {})

	calls := 0
	err := pingWithBackoff(context.Background(), 5, time.Second, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("ping = %v after %d calls", err, calls)
	}

	err = pingWithBackoff(context.Background(), 2, time.Second, func(context.Context) error {
		return errors.New("refused")
	})
	if err == nil || !strings.Contains(err.Error(), "after 2 attempts") {
		t.Fatalf("exhausted err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pingWithBackoff(ctx, 5, time.Second, func(context.Context) error { return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled err = %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_ENABLED", "true")
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://u:p@db/relay")
	t.Setenv("SERVICE_REDIS_ADDR", "cache:6380")
	cfg := ConfigFromEnv("cardrelay")
	if !cfg.PG.Enabled || cfg.PG.URL != "postgres://u:p@db/relay" || cfg.PG.MaxConns != 4 {
		t.Fatalf("pg cfg = %+v", cfg.PG)
	}
	if cfg.RDS.Enabled || cfg.RDS.Addr != "cache:6380" {
		t.Fatalf("redis cfg = %+v", cfg.RDS)
	}
}
