package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
)

// Route binds a handler to a method and path.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

func (s *Service) routes() []Route {
	return []Route{
		{http.MethodGet, "/", s.handleIndex},
		{http.MethodGet, "/chart.svg", s.handleChart},
		{http.MethodGet, "/healthz", s.handleHealth},
		{http.MethodGet, "/v1/state", s.handleState},
		{http.MethodGet, "/v1/status", s.handleStatus},
		{http.MethodGet, "/v1/events", s.handleEvents},
		{http.MethodGet, "/v1/stream", s.handleStream},
		{http.MethodPost, "/v1/forms", s.handleForm},
		{http.MethodPost, "/v1/modal", s.handleOpenModal},
		{http.MethodPost, "/v1/modal/close", s.handleCloseModal},
	}
}

// Handler returns the full HTTP handler with middleware applied.
func (s *Service) Handler() http.Handler {
	router := httprouter.New()
	for _, rt := range s.routes() {
		router.Handler(rt.Method, rt.Path, rt.Handler)
	}
	return alice.New(recoverMiddleware, loggingMiddleware).Then(router)
}
