package domain

import (
	"errors"
	"time"
)

var ErrMessageNotFound = errors.New("message not found")
var ErrInvalidTarget = errors.New("message must target exactly one user or group")

// Message is an append-only chat record. Exactly one of ReceiverID (direct)
// or GroupID (group) is set; the pair never changes after creation. The only
// permitted mutation is a hard delete by the sender.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId,omitempty"`
	GroupID    string    `json:"groupId,omitempty"`
	Body       string    `json:"message"`
	Timestamp  time.Time `json:"timeStamp"`
}

// IsGroup reports whether the message is addressed to a group.
func (m *Message) IsGroup() bool {
	return m.GroupID != ""
}

// Rooms returns the fan-out room ids a delivery or retraction of this message
// must reach. Direct messages hit both the receiver's and the sender's rooms
// so the sender's other connected sessions see the echo.
func (m *Message) Rooms() []string {
	if m.IsGroup() {
		return []string{m.GroupID}
	}
	return []string{m.ReceiverID, m.SenderID}
}
