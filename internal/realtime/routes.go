// internal/realtime/routes.go

package realtime

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, gateway *Gateway) {
	router.HandleFunc("/ws/video-dating", gateway.HandleWebSocket).Methods("GET")
}
