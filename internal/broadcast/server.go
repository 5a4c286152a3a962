package broadcast

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader allows any origin: tola serve is a local development tool, not
// a deployed service, so the usual cross-origin WebSocket restrictions
// don't apply.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler returns an http.Handler that upgrades GET /__tola/ws requests
// and registers them with hub.
func Handler(hub *Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(ws)
	})
}
