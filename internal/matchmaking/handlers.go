// internal/matchmaking/handlers.go

package matchmaking

import (
	"net/http"

	"github.com/peerzee/match-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetQueueStats returns the caller's queue position and the pool size
func (h *Handler) GetQueueStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	stats := h.service.Stats(userID)

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"queue_size":     h.service.QueueSize(),
		"is_in_queue":    h.service.IsQueued(userID),
		"position":       stats.Position,
		"total_waiting":  stats.Total,
		"estimated_wait": stats.EstimatedWait,
	})
}
