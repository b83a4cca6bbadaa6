package ports

import (
	"context"

	"github.com/chatwire/chat-system/internal/core/domain"
)

// MessageRepository defines persistence operations for the conversation store.
// All listing methods return messages sorted by timestamp ascending.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// FindDirect returns both directions of the conversation between two users.
	FindDirect(ctx context.Context, userA, userB string) ([]*domain.Message, error)
	// FindByGroup returns every message addressed to the group.
	FindByGroup(ctx context.Context, groupID string) ([]*domain.Message, error)
	Delete(ctx context.Context, id string) error
}
