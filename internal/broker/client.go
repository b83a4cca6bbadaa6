package broker

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer     = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// Inbound frame names accepted from the web client.
const (
	frameJoinPrivateRoom = "join_private_room"
	frameJoinGroup       = "join_group"
	frameLeaveRoom       = "leave_room"
)

// clientFrame is the envelope for frames sent by the client over the socket.
type clientFrame struct {
	Event   string `json:"event"`
	Room    string `json:"room,omitempty"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// Client is one connected WebSocket session. A user may hold several at once
// (tabs, devices); each joins rooms independently.
type Client struct {
	ID     string
	UserID string
	addr   string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	closed bool
}

// NewClient wraps an upgraded connection. conn may be nil in tests; the hub
// then skips the pumps and events can be read from Send directly.
func NewClient(conn *websocket.Conn, hub *Hub, userID, addr string) *Client {
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		addr:   addr,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// Send exposes the outbound event stream. Read-only for callers.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// handleFrame applies one inbound frame to the hub's room registry. Private
// rooms are always the session owner's own user id; a client cannot listen in
// on another user's direct deliveries.
func (c *Client) handleFrame(raw []byte) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.hub.log.Debug().Str("connection_id", c.ID).Err(err).Msg("discarding malformed frame")
		return
	}

	switch frame.Event {
	case frameJoinPrivateRoom:
		c.hub.Join(c, c.UserID)
	case frameJoinGroup:
		c.hub.Join(c, frame.GroupID)
	case frameLeaveRoom:
		room := frame.Room
		if room == "" {
			room = frame.GroupID
		}
		c.hub.Leave(c, room)
	default:
		c.hub.log.Debug().Str("connection_id", c.ID).Str("event", frame.Event).Msg("unknown frame event")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Str("connection_id", c.ID).Err(err).Msg("unexpected socket close")
			}
			return
		}
		c.handleFrame(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
