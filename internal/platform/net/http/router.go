package http

import "net/http"

// Handler is the plain handler func routes are registered with
type Handler = func(http.ResponseWriter, *http.Request)

// Router is what the ops API packages mount against. Server.Router returns the
// chi-backed implementation; tests can wrap a bare chi.Mux with AdaptChi
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Handle(path string, h http.Handler)

	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(pattern string, fn func(Router))
}
