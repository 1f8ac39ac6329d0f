package module

import (
	"testing"

	kit "cardrelay/internal/platform/testkit"
)

type resolverPort interface{ Resolve() string }
type statusPort interface{ Status() int }

type resolverImpl struct{}

func (resolverImpl) Resolve() string { return "card" }

type bundle struct {
	Resolver resolverPort
	hidden   statusPort
}

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string { return m.name }
func (m fakeModule) Ports() any   { return m.ports }

func TestPortsOf(t *testing.T) {
	m := fakeModule{name: "lookup", ports: bundle{Resolver: resolverImpl{}}}
	r, ok := PortsOf[resolverPort](m)
	if !ok || r.Resolve() != "card" {
		t.Fatalf("PortsOf field lookup failed")
	}
	if _, ok := PortsOf[statusPort](m); ok {
		t.Fatalf("unexported fields must not be visible")
	}
	direct := fakeModule{name: "direct", ports: resolverImpl{}}
	if _, ok := PortsOf[resolverPort](direct); !ok {
		t.Fatalf("direct implementation should be found")
	}
	if _, ok := PortsOf[resolverPort](fakeModule{name: "empty"}); ok {
		t.Fatalf("nil ports should not match")
	}
	kit.MustPanic(t, func() { _ = MustPortsOf[statusPort](m) })
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)
	Register("lookup", bundle{Resolver: resolverImpl{}})

	got, ok := Find[resolverPort]("lookup")
	if !ok || got.Resolve() != "card" {
		t.Fatalf("Find failed: %v %v", got, ok)
	}
	if _, ok := Find[statusPort]("lookup"); ok {
		t.Fatalf("unexported field should not match")
	}
	if _, ok := Find[resolverPort]("relay"); ok {
		t.Fatalf("unknown module should not match")
	}
	kit.MustPanic(t, func() { _ = MustFind[statusPort]("lookup") })

	Reset()
	if _, ok := Find[resolverPort]("lookup"); ok {
		t.Fatalf("Reset should clear registry")
	}
}
