// Package http exposes the relay queue status
package http

import (
	"net/http"

	phttp "cardrelay/internal/platform/net/http"

	dom "cardrelay/internal/services/relay/domain"
)

type handlers struct {
	q dom.QueuePort
}

// Register mounts the queue route
func Register(r phttp.Router, q dom.QueuePort) {
	h := &handlers{q: q}
	phttp.GetJSON(r, "/queue", h.status)
}

func (h *handlers) status(_ *http.Request) (any, error) {
	return h.q.Status(), nil
}
