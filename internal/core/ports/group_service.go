package ports

import (
	"context"

	"github.com/chatwire/chat-system/internal/core/domain"
)

// AddMembersResult reports the outcome of an AddMembers call. Added is zero
// when every requested user was already a member; that is a success, not an
// error, and the handler renders a distinct "nothing to add" message for it.
type AddMembersResult struct {
	Group *domain.Group
	Added int
}

// GroupService defines use-case operations for the group lifecycle and the
// dual-bookkeeping membership edge. Every mutation updates both Group.Members
// and the affected users' Groups sets before returning success.
type GroupService interface {
	// Create makes creatorID admin and first member. memberIDs that do not
	// reference stored users are silently dropped.
	Create(ctx context.Context, creatorID, name string, memberIDs []string) (*domain.Group, error)
	AddMembers(ctx context.Context, requesterID, groupID string, userIDs []string) (*AddMembersResult, error)
	RemoveMember(ctx context.Context, requesterID, groupID, userID string) (*domain.Group, error)
	// Leave removes the requester from the group. The returned group is nil
	// when the departure emptied the group and cascading deletion ran.
	Leave(ctx context.Context, requesterID, groupID string) (*domain.Group, string, error)
	// Delete removes a drained group. It fails with domain.ErrGroupNotEmpty
	// while anyone besides the admin is still a member.
	Delete(ctx context.Context, requesterID, groupID string) error
	// ListCandidates returns the invite pool for a group, or every other user
	// when groupID is empty.
	ListCandidates(ctx context.Context, requesterID, groupID string) ([]*domain.User, error)
}
