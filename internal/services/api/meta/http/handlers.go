// Package http provides the liveness, readiness, version and metrics endpoints
package http

import (
	"context"
	"net/http"
	"time"

	"cardrelay/internal/core/version"
	phttp "cardrelay/internal/platform/net/http"
)

// Guard is satisfied by the store facade (pg and redis pings)
type Guard interface {
	Guard(context.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	// Store is nil when the relay runs on the file store only
	Store       Guard
	// Metrics serves the Prometheus registry; nil disables /metrics
	Metrics     http.Handler
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	phttp.GetJSON(r, "/healthz", h.health)
	r.Get("/readyz", phttp.Handle(h.ready))
	phttp.GetJSON(r, "/version", h.version)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		Status:  "ok",
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}

func (h *handlers) ready(r *http.Request) phttp.Response {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := ReadyCheck{Name: "store", Status: "skipped"}
	if h.deps.Store != nil {
		check.Status = "ok"
		if err := h.deps.Store.Guard(ctx); err != nil {
			check.Status, check.Error = "fail", err.Error()
		}
	}

	resp := ReadyResponse{Status: "ok", Checks: []ReadyCheck{check}, Now: h.now().UTC().Format(time.RFC3339)}
	if check.Status == "fail" {
		resp.Status = "fail"
		return phttp.Response{Status: http.StatusServiceUnavailable, Body: resp}
	}
	return phttp.OK(resp)
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}
