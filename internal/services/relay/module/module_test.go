package module

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cardrelay/internal/modkit"
	mod "cardrelay/internal/modkit/module"
	"cardrelay/internal/modkit/repokit"
	"cardrelay/internal/platform/config"
	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"

	ldom "cardrelay/internal/services/lookup/domain"
	dom "cardrelay/internal/services/relay/domain"
	"cardrelay/internal/services/relay/repo"
)

func TestFromConfig(t *testing.T) {
	o := FromConfig(config.New())
	if o.OnFailure != dom.FailAbort || o.Store != repo.BackendFile || o.StoreFile != "database.json" || o.DrainTimeout != 2*time.Minute {
		t.Fatalf("defaults = %+v", o)
	}

	t.Setenv("RELAY_ON_FAILURE", "continue")
	t.Setenv("RELAY_STORE", "REDIS")
	t.Setenv("RELAY_DRAIN_TIMEOUT", "5s")
	o = FromConfig(config.New())
	if o.OnFailure != dom.FailContinue || o.Store != repo.BackendRedis || o.DrainTimeout != 5*time.Second {
		t.Fatalf("env = %+v", o)
	}
}

type nopTag struct{}

func (nopTag) String() string      { return "CREATE TABLE" }
func (nopTag) RowsAffected() int64 { return 0 }

// fakeTx answers every statement with success
type fakeTx struct{ execs int }

func (f *fakeTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	f.execs++
	return nopTag{}, nil
}
func (f *fakeTx) Query(context.Context, string, ...any) (repokit.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) repokit.Row        { return nil }
func (f *fakeTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	return fn(f)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	deps := modkit.Deps{Log: logger.Nop()}

	st, err := OpenStore(ctx, deps, Options{Store: repo.BackendFile, StoreFile: filepath.Join(t.TempDir(), "db.json")})
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	if _, ok := st.(*repo.FileStore); !ok {
		t.Fatalf("file store type = %T", st)
	}

	if _, err := OpenStore(ctx, deps, Options{Store: repo.BackendPG}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("pg without pool = %v", err)
	}
	if _, err := OpenStore(ctx, deps, Options{Store: repo.BackendRedis}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("redis without client = %v", err)
	}
	if _, err := OpenStore(ctx, deps, Options{Store: "sqlite"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("unknown backend = %v", err)
	}

	tx := &fakeTx{}
	deps.PG = tx
	if _, err := OpenStore(ctx, deps, Options{Store: repo.BackendPG}); err != nil || tx.execs != 1 {
		t.Fatalf("pg store = %v, execs=%d", err, tx.execs)
	}
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, id string) ldom.ResolutionResult {
	return ldom.ResolutionResult{Identifier: id, Err: perr.Newf(perr.ErrorCodeExhaustedCandidates, "none")}
}

type stubChannel struct{ dom.NotificationChannel }

func TestNew_WiresPorts(t *testing.T) {
	deps := modkit.Deps{Log: logger.Nop(), Cfg: config.New()}
	m := New(context.Background(), deps, Options{
		StoreFile:    filepath.Join(t.TempDir(), "database.json"),
		DrainTimeout: time.Second,
	}, stubResolver{}, stubChannel{})

	if m.Name() != "relay" || m.Options().DrainTimeout != time.Second {
		t.Fatalf("module = %s %+v", m.Name(), m.Options())
	}
	q := mod.MustPortsOf[dom.QueuePort](m)
	if _, ok := mod.PortsOf[dom.IngressPort](m); !ok {
		t.Fatalf("ingress port missing")
	}
	if st := q.Status(); st.Busy || st.Draining {
		t.Fatalf("fresh queue status = %+v", st)
	}

	if err := m.Drain(context.Background()); err != nil {
		t.Fatalf("drain idle queue: %v", err)
	}
	if !q.Status().Draining {
		t.Fatalf("queue should report draining")
	}
	if _, err := q.Enqueue(context.Background(), &dom.Task{Identifiers: []string{"123456"}}); err != dom.ErrDraining {
		t.Fatalf("enqueue after drain = %v", err)
	}
}
