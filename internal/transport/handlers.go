package transport

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// NewUpgrader builds a websocket.Upgrader whose CheckOrigin accepts only
// the given origins, or any origin if allowedOrigins is empty (development
// fallback; config.Config rejects that combination in production).
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[r.Header.Get("Origin")]
			return ok
		},
	}
}

// ServeWS upgrades the request to a websocket connection and registers a
// new Client on hub. userId is read from the query string so a
// reconnecting client can resume its prior identity; a blank value lets
// the orchestrator mint one on the first room.create/room.join.
func ServeWS(hub *Hub, upgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	socketID := uuid.NewString()
	userID := r.URL.Query().Get("userId")

	client := newClient(hub, conn, socketID, userID)
	hub.register <- client
	client.Start()
}

// HealthHandler reports liveness for load balancers and orchestration
// probes.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// DebugInfo summarizes hub-level state for the debug endpoint.
type DebugInfo struct {
	ConnectedSockets int `json:"connectedSockets"`
}

// DebugHandler reports the number of currently connected sockets. Unlike
// the teacher's handler it cannot list room membership directly, since the
// orchestrator — not the transport layer — owns the room store.
func DebugHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DebugInfo{ConnectedSockets: hub.ClientCount()})
	}
}

// RoomsHandler lists joinable lobby rooms, the lobby-browser counterpart
// to the teacher's /api/rooms.
func RoomsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := hub.orchestrator.ListJoinableRooms(r.Context())
		if err != nil {
			http.Error(w, "failed to list rooms", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rooms)
	}
}
