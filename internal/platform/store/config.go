package store

import (
	"time"

	"cardrelay/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	RDS RedisConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// RedisConfig configures redis connectivity
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// ConfigFromEnv reads SERVICE_PGSQL_* and SERVICE_REDIS_* keys
func ConfigFromEnv(appName string) Config {
	pgc := config.New().Prefix("SERVICE_PGSQL_")
	rdc := config.New().Prefix("SERVICE_REDIS_")
	return Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:        pgc.MayBool("ENABLED", false),
			URL:            pgc.MayString("DBURL", ""),
			MaxConns:       int32(pgc.MayInt("MAX_CONNS", 4)),
			LogSQL:         pgc.MayBool("LOG_SQL", false),
			SlowQueryMs:    pgc.MayInt("SLOW_MS", 200),
			ConnectRetries: pgc.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		RDS: RedisConfig{
			Enabled:  rdc.MayBool("ENABLED", false),
			Addr:     rdc.MayString("ADDR", "localhost:6379"),
			Password: rdc.MayString("PASSWORD", ""),
			DB:       rdc.MayInt("DB", 0),
		},
	}
}
