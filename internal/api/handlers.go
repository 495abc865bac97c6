package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/likescenter/internal/jobs"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
	"github.com/vytor/likescenter/internal/services"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Likes services.LikesService
	Jobs  jobs.JobQueue
	DB    Pinger

	// OriginPatterns is passed to the WebSocket handshake. Empty means same
	// origin only.
	OriginPatterns []string
}

func (s *Server) handleListLikes(w http.ResponseWriter, r *http.Request) {
	status, err := statusParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.Likes.View(r.Context(), status)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Debug("listing %d %s profiles", len(view.Profiles), status)
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.Likes.Refresh(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	res, err := s.Likes.LoadMore(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleAction(action models.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logger.FromContext(r.Context()).WithFields(map[string]any{"user_id": id, "action": action})
		log.Debug("performing action")

		var err error
		if action == models.ActionLike {
			err = s.Likes.Like(r.Context(), id)
		} else {
			err = s.Likes.Pass(r.Context(), id)
		}
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"id":     id,
			"status": action.TargetStatus(),
		})
	}
}

func (s *Server) handleGetUnblur(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Likes.Blur(r.Context()))
}

func (s *Server) handleActivateUnblur(w http.ResponseWriter, r *http.Request) {
	blur, err := s.Likes.ActivateUnblur(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("unblur activated, remaining=%s", blur.Remaining)
	writeJSON(w, r, http.StatusOK, blur)
}
