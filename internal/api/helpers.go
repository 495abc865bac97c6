package api

import (
	"encoding/json"
	"net/http"

	"github.com/vytor/likescenter/internal/errors"
	"github.com/vytor/likescenter/internal/logger"
	"github.com/vytor/likescenter/internal/models"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response: %v", err)
	}
}

// statusParam reads the status filter from the query string, defaulting to
// incoming.
func statusParam(r *http.Request) (models.Status, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return models.StatusIncoming, nil
	}
	status, err := models.ParseStatus(raw)
	if err != nil {
		return 0, errors.NewBadRequestError("status must be incoming, mutual or passed")
	}
	return status, nil
}
