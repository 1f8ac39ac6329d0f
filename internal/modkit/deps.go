// Package modkit provides module wiring and core deps
package modkit

import (
	"cardrelay/internal/modkit/repokit"
	"cardrelay/internal/platform/config"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	"github.com/redis/go-redis/v9"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	Redis   redis.UniversalClient
	Metrics *metrics.Metrics
}

// MetricsOrNop returns Metrics, or a private unregistered set when none was wired
func (d Deps) MetricsOrNop() *metrics.Metrics {
	if d.Metrics != nil {
		return d.Metrics
	}
	return metrics.New(nil)
}
