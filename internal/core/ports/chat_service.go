package ports

import (
	"context"

	"github.com/chatwire/chat-system/internal/core/domain"
)

// SendInput carries all data needed to create a message. Exactly one of
// ReceiverID and GroupID must be set.
type SendInput struct {
	SenderID   string
	Body       string
	ReceiverID string
	GroupID    string
}

// RetrieveMode selects the addressing mode of a conversation read.
type RetrieveMode string

const (
	RetrieveDirect RetrieveMode = "user"
	RetrieveGroup  RetrieveMode = "group"
)

// ConversationMessage is a stored message annotated with the sent-by-me flag
// for the requesting user. The flag is computed per request, never stored.
type ConversationMessage struct {
	domain.Message
	Mine bool `json:"sent_by_me"`
}

// ChatService defines use-case operations for the conversation store.
type ChatService interface {
	Send(ctx context.Context, input SendInput) (*domain.Message, error)
	// Retrieve returns the conversation between currentUserID and counterpartID
	// (a user id in direct mode, a group id in group mode), oldest first.
	Retrieve(ctx context.Context, currentUserID, counterpartID string, mode RetrieveMode) ([]ConversationMessage, error)
	// Delete removes a message. Only the sender may delete; anyone else gets
	// domain.ErrMessageNotFound.
	Delete(ctx context.Context, requesterID, messageID string) error
}
