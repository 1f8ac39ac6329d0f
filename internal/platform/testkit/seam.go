package testkit

import "testing"

// Swap replaces *target for the rest of the test and puts the old value back on Cleanup.
// Seams swapped this way are package globals, so callers must not run in parallel
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	prev := *target
	*target = replacement
	t.Cleanup(func() { *target = prev })
}
