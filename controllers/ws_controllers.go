package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/restoscan/resto-app/realtime"
	"github.com/restoscan/resto-app/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front of the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades a subscriber connection and keeps it registered
// until it drops. Clients never send commands over the socket; reads only
// detect disconnects.
func WebSocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	role := currentRole(c)
	if role == "" {
		role = "customer"
	}
	realtime.RegisterClient(conn, role)
	utils.InfoLogger.Printf("WebSocket client connected (%s)", role)

	go func() {
		defer realtime.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
