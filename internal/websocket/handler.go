package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs runs a feed connection until the peer goes away.
func ServeWs(hub *Hub, c *websocket.Conn, conversationID, userID string) {
	client := NewClient(hub, c, conversationID, userID)
	if !hub.Register(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
