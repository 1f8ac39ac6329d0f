package store

import (
	"context"
	"errors"
	"time"

	"cardrelay/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgAdapter wraps pg.PG and implements RowQuerier + TxRunner
type pgAdapter struct {
	p  *pg.PG
	tr traceEmitter
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{p: p, tr: traceEmitter{tracer: p.Tracer, slowUS: int64(p.SlowMs) * 1000}}
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil {
		return errors.New("pg: nil adapter")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return execTraced(ctx, a.tr, a.p.Pool, sql, args)
}

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return queryTraced(ctx, a.tr, a.p.Pool, sql, args)
}

func (a *pgAdapter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return queryRowTraced(ctx, a.tr, a.p.Pool, sql, args)
}

func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(txQuerier{tx: tx, tr: a.tr}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// txQuerier uses pgx.Tx to satisfy RowQuerier inside a Tx
type txQuerier struct {
	tx pgx.Tx
	tr traceEmitter
}

func (t txQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return execTraced(ctx, t.tr, t.tx, sql, args)
}

func (t txQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return queryTraced(ctx, t.tr, t.tx, sql, args)
}

func (t txQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return queryRowTraced(ctx, t.tr, t.tx, sql, args)
}

// pgxQuerier is the common surface of *pgxpool.Pool and pgx.Tx
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func execTraced(ctx context.Context, tr traceEmitter, q pgxQuerier, sql string, args []any) (CommandTag, error) {
	start := time.Now()
	ct, err := q.Exec(ctx, sql, args...)
	tr.emit(ctx, sql, args, start, err)
	return tag{ct}, err
}

func queryTraced(ctx context.Context, tr traceEmitter, q pgxQuerier, sql string, args []any) (Rows, error) {
	start := time.Now()
	rs, err := q.Query(ctx, sql, args...)
	tr.emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{r: rs}, nil
}

func queryRowTraced(ctx context.Context, tr traceEmitter, q pgxQuerier, sql string, args []any) Row {
	start := time.Now()
	r := q.QueryRow(ctx, sql, args...)
	// emit after Scan so the scan error is captured
	return row{r: r, after: func(scanErr error) { tr.emit(ctx, sql, args, start, scanErr) }}
}

// traceEmitter forwards query timings to the configured tracer, if any
type traceEmitter struct {
	tracer pg.QueryTracer
	slowUS int64
}

func (t traceEmitter) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	elapsedUS := time.Since(start).Microseconds()
	t.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsedUS,
		Err:       err,
		Slow:      t.slowUS >= 0 && elapsedUS >= t.slowUS,
	})
}

type row struct {
	r     pgx.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type rows struct{ r pgx.Rows }

func (x rows) Next() bool            { return x.r.Next() }
func (x rows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x rows) Err() error            { return x.r.Err() }
func (x rows) Close()                { x.r.Close() }

// tag wraps pgconn.CommandTag so we satisfy our CommandTag interface
type tag struct{ t pgconn.CommandTag }

func (t tag) String() string      { return t.t.String() }
func (t tag) RowsAffected() int64 { return t.t.RowsAffected() }
