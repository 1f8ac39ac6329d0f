package module

import "sync"

// process-wide registry filled by main once modules are built; the ops API
// and late-bound adapters read ports back by module name
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores the port bundle of module name, replacing any earlier one
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// Find returns the first port of type T in the bundle registered under name
func Find[T any](name string) (T, bool) {
	mu.RLock()
	p, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	return portFrom[T](p)
}

// MustFind is Find for bootstrap code where a missing port is a wiring bug
func MustFind[T any](name string) T {
	if v, ok := Find[T](name); ok {
		return v
	}
	panic("module: no matching port registered for " + name)
}

// Reset clears the registry for tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
