package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vytor/likescenter/internal/models"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestContext)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/likes", func(r chi.Router) {
		r.Get("/", s.handleListLikes)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/more", s.handleLoadMore)
		r.Post("/{id}/like", s.handleAction(models.ActionLike))
		r.Post("/{id}/pass", s.handleAction(models.ActionPass))
	})

	r.Get("/unblur", s.handleGetUnblur)
	r.Post("/unblur", s.handleActivateUnblur)

	r.Get("/ws", s.handleWebSocket)
	return r
}
