package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/chatwire/chat-system/internal/broker"
)

// WSHandler upgrades GET /ws to a WebSocket session and hands it to the hub.
type WSHandler struct {
	hub      *broker.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *broker.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The web client is served from another origin in development;
			// auth happens via the JWT middleware, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /ws. The session starts joined to the user's own
// private room so direct messages and echoes arrive without an explicit
// join_private_room frame; group rooms are joined per frame.
func (h *WSHandler) Connect(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "websocket upgrade failed")
	}

	client := broker.NewClient(conn, h.hub, userID, c.RealIP())
	h.hub.Register(client)
	h.hub.Join(client, userID)
	return nil
}
