package ports

import (
	"context"

	"github.com/chatwire/chat-system/internal/core/domain"
)

// GroupRepository defines persistence operations for groups and the
// group-side half of the membership edge.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) (*domain.Group, error)
	FindByID(ctx context.Context, id string) (*domain.Group, error)
	FindByName(ctx context.Context, name string) (*domain.Group, error)

	// AddMembers appends userIDs to the group's member set.
	AddMembers(ctx context.Context, groupID string, userIDs []string) error
	// RemoveMember pulls userID from the group's member set.
	RemoveMember(ctx context.Context, groupID string, userID string) error
	// SetAdmin reassigns the group's admin reference.
	SetAdmin(ctx context.Context, groupID string, userID string) error

	Delete(ctx context.Context, id string) error
}
