// internal/session/routes.go

package session

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/api/v1/sessions/history", handler.GetHistory).Methods("GET")
	router.HandleFunc("/api/v1/sessions/active", handler.GetActive).Methods("GET")
}
