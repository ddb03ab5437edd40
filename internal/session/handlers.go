// internal/session/handlers.go

package session

import (
	"net/http"
	"strconv"

	"github.com/peerzee/match-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetHistory returns a user's most recent sessions
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			utils.RespondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	sessions, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch session history")
		return
	}
	if sessions == nil {
		sessions = []*Session{}
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetActive reports how many sessions are currently live
func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"active_sessions": h.service.ActiveCount(),
	})
}
