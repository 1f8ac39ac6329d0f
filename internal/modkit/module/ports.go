// Package module holds the port registry used when composing modules in main
package module

import "reflect"

// Module is the part of modkit.Module the registry needs
// kept here to avoid an import knot with modules that also export ports
type Module interface {
	Ports() any
	Name() string
}

// PortsOf pulls T out of a module's Ports() bundle without using the registry
// it returns ok=false if neither the bundle nor any exported field implements T
func PortsOf[T any](m Module) (T, bool) { return portFrom[T](m.Ports()) }

func portFrom[T any](p any) (t T, ok bool) {
	if p == nil {
		return t, false
	}
	if v, ok2 := p.(T); ok2 {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() != reflect.Struct {
		return t, false
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok2 := f.Interface().(T); ok2 {
			return v, true
		}
	}
	return t, false
}

// MustPortsOf is a convenience that panics with a friendly message
func MustPortsOf[T any](m Module) T {
	if v, ok := PortsOf[T](m); ok {
		return v
	}
	panic("module: requested port not found on module " + m.Name())
}
