// Package api mounts the ops HTTP API: health, readiness, metrics, queue status and lookup
package api

import (
	"time"

	"cardrelay/internal/platform/metrics"
	phttp "cardrelay/internal/platform/net/http"
	"cardrelay/internal/platform/net/middleware"

	ldom "cardrelay/internal/services/lookup/domain"
	rdom "cardrelay/internal/services/relay/domain"

	lookuphttp "cardrelay/internal/services/api/lookup/http"
	metahttp "cardrelay/internal/services/api/meta/http"
	queuehttp "cardrelay/internal/services/api/queue/http"
)

// Options are the API options
type Options struct {
	ServiceName string
	StartedAt   time.Time
	Store       metahttp.Guard
	Metrics     *metrics.Metrics
	Resolver    ldom.ResolverPort
	// Queue is nil for processes without a relay; /v1/queue is then not mounted
	Queue       rdom.QueuePort
	CORSOrigins []string
	SlowRequest time.Duration
}

// Mount mounts the API onto r
func Mount(r phttp.Router, opt Options) {
	if opt.StartedAt.IsZero() {
		opt.StartedAt = time.Now()
	}

	r.Use(middleware.Defaults()...)
	r.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: opt.CORSOrigins, MaxAge: 300}))
	r.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{
		Slow:    opt.SlowRequest,
		Observe: opt.Metrics.ObserveHTTP,
	}))

	meta := metahttp.Deps{ServiceName: opt.ServiceName, StartedAt: opt.StartedAt, Store: opt.Store}
	if opt.Metrics != nil {
		meta.Metrics = opt.Metrics.Handler()
	}
	metahttp.Register(r, meta)

	r.Route("/v1", func(v phttp.Router) {
		if opt.Resolver != nil {
			lookuphttp.Register(v, opt.Resolver)
		}
		if opt.Queue != nil {
			queuehttp.Register(v, opt.Queue)
		}
	})
}
