// internal/matchmaking/routes.go

package matchmaking

import "github.com/gorilla/mux"

// RegisterRoutes sets up matchmaking endpoints
func RegisterRoutes(router *mux.Router, handler *Handler) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/queue/stats", handler.GetQueueStats).Methods("GET")
}
