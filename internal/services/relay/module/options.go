package module

import (
	"time"

	"cardrelay/internal/platform/config"

	dom "cardrelay/internal/services/relay/domain"
	"cardrelay/internal/services/relay/repo"
)

// Options controls the relay
type Options struct {
	OnFailure    dom.FailurePolicy
	Store        string
	StoreFile    string
	RedisPrefix  string
	DrainTimeout time.Duration
}

// FromConfig reads with RELAY_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RELAY_")
	return Options{
		OnFailure:    dom.FailurePolicy(c.MayEnum("ON_FAILURE", string(dom.FailAbort), string(dom.FailAbort), string(dom.FailContinue))),
		Store:        c.MayEnum("STORE", repo.BackendFile, repo.BackendFile, repo.BackendPG, repo.BackendRedis),
		StoreFile:    c.MayString("STORE_FILE", "database.json"),
		RedisPrefix:  c.MayString("REDIS_PREFIX", "relay:chat:"),
		DrainTimeout: c.MayDuration("DRAIN_TIMEOUT", 2*time.Minute),
	}
}
