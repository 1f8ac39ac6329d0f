package modkit

import (
	"testing"

	"cardrelay/internal/platform/metrics"
)

func TestDeps_MetricsOrNop(t *testing.T) {
	if (Deps{}).MetricsOrNop() == nil {
		t.Fatalf("zero deps should still yield metrics")
	}
	m := metrics.New(nil)
	if (Deps{Metrics: m}).MetricsOrNop() != m {
		t.Fatalf("wired metrics should be returned as is")
	}
}
