package repokit

import (
	"context"
	"time"

	perr "cardrelay/internal/platform/errors"
)

// GuardTimeout bounds MustGuard when ctx has no deadline of its own
const GuardTimeout = 5 * time.Second

// Guarder verifies the backends behind it are reachable
type Guarder interface {
	Guard(context.Context) error
}

// MustGuard checks g once at startup and panics with an Unavailable error when it fails
func MustGuard(ctx context.Context, g Guarder) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, GuardTimeout)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		panic(perr.Wrap(err, perr.ErrorCodeUnavailable, "store guard failed"))
	}
}
