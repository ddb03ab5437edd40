// internal/presence/handlers.go

package presence

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/peerzee/match-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetUserStatus returns a user's presence status and pool membership
func (h *Handler) GetUserStatus(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if userID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	status, err := h.service.GetStatus(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read presence")
		return
	}

	inPool, err := h.service.IsInMatchingPool(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read presence")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"user_id":          userID,
		"status":           status,
		"in_matching_pool": inPool,
		"is_online":        status != "",
	})
}

// GetPoolCount returns how many users are in the matching pool
func (h *Handler) GetPoolCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.MatchingPoolCount(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read matching pool")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"matching_pool_count": count,
	})
}
