// Package repokit holds the small contracts repo packages build on: the SQL
// surface they bind to and the transaction runner modules hand them
package repokit

import (
	"context"

	"cardrelay/internal/platform/store"
)

// Queryer is the read and write surface a SQL repo is bound to
type Queryer = store.RowQuerier

// TxRunner runs a function inside one transaction
type TxRunner = store.TxRunner

type (
	// Rows is a query result set
	Rows = store.Rows

	// Row is a single QueryRow result
	Row = store.Row

	// CommandTag reports what an Exec touched
	CommandTag = store.CommandTag
)

// Binder builds a repo of type T over a Queryer, either the pool or a tx
type Binder[T any] interface {
	Bind(Queryer) T
}

// MustBind binds b to q and panics on a nil q, which is always a wiring bug
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}

// WithTx runs fn in a transaction on tx; fn's error rolls it back
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
