package ports

// Event kinds pushed to connected sessions. The names are part of the wire
// contract with the web client.
const (
	EventPrivateMessage = "private_message"
	EventGroupMessage   = "group_message"
	EventMessageDeleted = "message_deleted"
)

// Event is a single real-time notification addressed to one room.
type Event struct {
	Type string `json:"event"`
	Room string `json:"room"`
	Data any    `json:"data,omitempty"`
}

// EventPublisher pushes events to every session currently joined to a room.
// Delivery is at-most-once and best-effort: implementations must never block
// the caller or report delivery failure back to it. The in-process hub is the
// default implementation; an external channel can be substituted for
// multi-node deployments.
type EventPublisher interface {
	Publish(room string, event Event)
}
