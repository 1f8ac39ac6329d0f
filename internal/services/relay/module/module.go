// Package module wires the relay queue, ingress and chat store and exposes their ports
package module

import (
	"context"

	"cardrelay/internal/modkit"
	"cardrelay/internal/modkit/repokit"
	perr "cardrelay/internal/platform/errors"
	phttp "cardrelay/internal/platform/net/http"

	ldom "cardrelay/internal/services/lookup/domain"
	dom "cardrelay/internal/services/relay/domain"
	"cardrelay/internal/services/relay/repo"
	"cardrelay/internal/services/relay/service"
)

// Ports is the relay port set
type Ports struct {
	Queue   dom.QueuePort
	Ingress dom.IngressPort
	Store   dom.ChatCategoryStore
}

// Module defines the relay module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the relay module. Non-zero overrides win over config.
// A chat store that cannot be opened is fatal
func New(ctx context.Context, deps modkit.Deps, overrides Options, resolver ldom.ResolverPort, ch dom.NotificationChannel) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.OnFailure != "" {
		opts.OnFailure = overrides.OnFailure
	}
	if overrides.Store != "" {
		opts.Store = overrides.Store
	}
	if overrides.StoreFile != "" {
		opts.StoreFile = overrides.StoreFile
	}
	if overrides.RedisPrefix != "" {
		opts.RedisPrefix = overrides.RedisPrefix
	}
	if overrides.DrainTimeout != 0 {
		opts.DrainTimeout = overrides.DrainTimeout
	}

	st, err := OpenStore(ctx, deps, opts)
	if err != nil {
		deps.Log.Fatal().Err(err).Str("store", opts.Store).Msg("chat store unavailable")
	}

	svc := service.New(ctx, deps, service.Config{OnFailure: opts.OnFailure}, service.Collaborators{
		Resolver: resolver,
		Channel:  ch,
		Store:    st,
	})

	deps.Log.Info().
		Str("store", opts.Store).
		Str("on_failure", string(opts.OnFailure)).
		Dur("drain_timeout", opts.DrainTimeout).
		Msg("relay module ready")

	return &Module{deps: deps, opts: opts, ports: Ports{Queue: svc, Ingress: svc, Store: st}}
}

// OpenStore builds the configured ChatCategoryStore backend
func OpenStore(ctx context.Context, deps modkit.Deps, opts Options) (repo.Storage, error) {
	switch opts.Store {
	case repo.BackendFile, "":
		return repo.OpenFile(opts.StoreFile)
	case repo.BackendPG:
		if deps.PG == nil {
			return nil, perr.Unavailablef("RELAY_STORE=pg needs SERVICE_PGSQL_ENABLED")
		}
		err := repokit.WithTx(ctx, deps.PG, func(q repokit.Queryer) error {
			return repo.EnsureSchema(ctx, q)
		})
		if err != nil {
			return nil, err
		}
		return repokit.MustBind(repo.NewPG(), deps.PG), nil
	case repo.BackendRedis:
		if deps.Redis == nil {
			return nil, perr.Unavailablef("RELAY_STORE=redis needs SERVICE_REDIS_ENABLED")
		}
		return repo.NewRedis(deps.Redis, opts.RedisPrefix), nil
	}
	return nil, perr.InvalidArgf("unknown chat store %q", opts.Store)
}

// Drain stops intake and waits up to DrainTimeout for the running task
func (m *Module) Drain(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.opts.DrainTimeout)
	defer cancel()
	return m.ports.Queue.Shutdown(ctx)
}

// Options returns the effective options after config and overrides
func (m *Module) Options() Options { return m.opts }

// Ports returns the module ports (Queue, Ingress, Store)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "relay" }

// MountRoutes returns no HTTP routes; the ops API reads the queue port
func (m *Module) MountRoutes(_ phttp.Router) {}
