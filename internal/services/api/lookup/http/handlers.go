// Package http exposes synchronous identifier resolution
package http

import (
	"net/http"

	phttp "cardrelay/internal/platform/net/http"

	dom "cardrelay/internal/services/lookup/domain"
)

// LookupRequest is the POST /v1/lookup body
type LookupRequest struct {
	Identifier string `json:"identifier" validate:"required,numeric,min=5"`
}

type handlers struct {
	resolver dom.ResolverPort
}

// Register mounts the lookup route
func Register(r phttp.Router, resolver dom.ResolverPort) {
	h := &handlers{resolver: resolver}
	phttp.PostJSON(r, "/lookup", h.lookup)
}

// lookup resolves one identifier; exhausting every candidate maps to 404
func (h *handlers) lookup(r *http.Request, in LookupRequest) phttp.Response {
	res := h.resolver.Resolve(r.Context(), in.Identifier)
	if res.Err != nil {
		return phttp.Error(res.Err)
	}
	return phttp.OK(res)
}
