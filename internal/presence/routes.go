// internal/presence/routes.go

package presence

import "github.com/gorilla/mux"

// RegisterRoutes sets up presence endpoints
func RegisterRoutes(router *mux.Router, handler *Handler) {
	api := router.PathPrefix("/api/v1/presence").Subrouter()

	api.HandleFunc("/pool/count", handler.GetPoolCount).Methods("GET")
	api.HandleFunc("/{user_id}", handler.GetUserStatus).Methods("GET")
}
