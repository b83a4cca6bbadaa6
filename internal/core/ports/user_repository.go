package ports

import (
	"context"

	"github.com/chatwire/chat-system/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts and the
// user-side half of the membership edge.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUserName(ctx context.Context, userName string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindAllExcept returns every user except excludeID.
	FindAllExcept(ctx context.Context, excludeID string) ([]*domain.User, error)
	// FindCandidates returns every user whose id is neither excludeID nor in
	// memberIDs (the invite pool for a group).
	FindCandidates(ctx context.Context, excludeID string, memberIDs []string) ([]*domain.User, error)
	// FilterExisting narrows ids to those that reference stored users,
	// preserving input order.
	FilterExisting(ctx context.Context, ids []string) ([]string, error)

	// AddGroup appends groupID to each listed user's membership set.
	AddGroup(ctx context.Context, userIDs []string, groupID string) error
	// RemoveGroup pulls groupID from one user's membership set.
	RemoveGroup(ctx context.Context, userID string, groupID string) error
	// RemoveGroupFromAll pulls groupID from every user that references it.
	RemoveGroupFromAll(ctx context.Context, groupID string) error

	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
}
