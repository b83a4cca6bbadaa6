package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/chatwire/chat-system/internal/core/domain"
	"github.com/chatwire/chat-system/internal/core/ports"
)

// GroupService orchestrates the group lifecycle. Membership lives on both
// sides of the edge (Group.Members and User.Groups); every mutation here
// updates both before reporting success, with a compensating rollback when
// the second write fails. The store has no multi-document transactions.
type GroupService struct {
	groups ports.GroupRepository
	users  ports.UserRepository
	log    zerolog.Logger
}

func NewGroupService(groups ports.GroupRepository, users ports.UserRepository, log zerolog.Logger) *GroupService {
	return &GroupService{groups: groups, users: users, log: log}
}

// Create makes creatorID the admin and first member of a new group. Member
// ids that do not reference stored users are dropped without error.
func (s *GroupService) Create(ctx context.Context, creatorID, name string, memberIDs []string) (*domain.Group, error) {
	others := lo.Filter(memberIDs, func(id string, _ int) bool { return id != creatorID && id != "" })
	if len(others) < 1 {
		return nil, domain.ErrMembersRequired
	}

	if _, err := s.groups.FindByName(ctx, name); err == nil {
		return nil, domain.ErrGroupExists
	} else if !errors.Is(err, domain.ErrGroupNotFound) {
		return nil, fmt.Errorf("create group: %w", err)
	}

	existing, err := s.users.FilterExisting(ctx, lo.Uniq(others))
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	if len(existing) < 1 {
		return nil, domain.ErrMembersRequired
	}

	group := &domain.Group{
		Name:      name,
		AdminID:   creatorID,
		Members:   append([]string{creatorID}, existing...),
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.groups.Create(ctx, group)
	if err != nil {
		return nil, err
	}

	if err := s.users.AddGroup(ctx, created.Members, created.ID); err != nil {
		// Compensate: the group document must not survive with dangling
		// membership, the user side is the one that failed.
		if delErr := s.groups.Delete(ctx, created.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("group_id", created.ID).Msg("rollback of group creation failed")
		}
		return nil, fmt.Errorf("create group: cross-reference members: %w", err)
	}

	s.log.Info().Str("group_id", created.ID).Str("group_name", created.Name).Int("members", len(created.Members)).Msg("group created")
	return created, nil
}

// AddMembers appends users to the group. Requester must be the admin. Users
// already in the group and ids of unknown users are filtered out; an empty
// remainder is a no-op success with Added == 0.
func (s *GroupService) AddMembers(ctx context.Context, requesterID, groupID string, userIDs []string) (*ports.AddMembersResult, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(requesterID) {
		return nil, domain.ErrForbidden
	}

	newcomers := lo.Filter(lo.Uniq(userIDs), func(id string, _ int) bool {
		return id != "" && !group.HasMember(id)
	})
	newcomers, err = s.users.FilterExisting(ctx, newcomers)
	if err != nil {
		return nil, fmt.Errorf("add members: %w", err)
	}
	if len(newcomers) == 0 {
		return &ports.AddMembersResult{Group: group, Added: 0}, nil
	}

	if err := s.groups.AddMembers(ctx, groupID, newcomers); err != nil {
		return nil, fmt.Errorf("add members: %w", err)
	}
	if err := s.users.AddGroup(ctx, newcomers, groupID); err != nil {
		// Compensate the group-side write so both halves of the edge agree.
		for _, id := range newcomers {
			if rbErr := s.groups.RemoveMember(ctx, groupID, id); rbErr != nil {
				s.log.Error().Err(rbErr).Str("group_id", groupID).Str("user_id", id).Msg("rollback of member add failed")
			}
		}
		return nil, fmt.Errorf("add members: cross-reference users: %w", err)
	}

	group.Members = append(group.Members, newcomers...)
	s.log.Info().Str("group_id", groupID).Int("added", len(newcomers)).Msg("members added")
	return &ports.AddMembersResult{Group: group, Added: len(newcomers)}, nil
}

// RemoveMember expels a member. Requester must be the admin, and the admin
// cannot be removed through this path; a group is never left admin-less.
func (s *GroupService) RemoveMember(ctx context.Context, requesterID, groupID, userID string) (*domain.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(requesterID) {
		return nil, domain.ErrForbidden
	}
	if group.IsAdmin(userID) {
		return nil, domain.ErrForbidden
	}
	if !group.HasMember(userID) {
		return nil, domain.ErrNotMember
	}

	if err := s.dropMember(ctx, group, userID); err != nil {
		return nil, err
	}

	group.Members = lo.Without(group.Members, userID)
	s.log.Info().Str("group_id", groupID).Str("user_id", userID).Msg("member removed")
	return group, nil
}

// Leave is self-service removal, open to any member including the admin.
// When the admin leaves and members remain, the longest-standing member is
// promoted. When the last member leaves, the group is deleted.
func (s *GroupService) Leave(ctx context.Context, requesterID, groupID string) (*domain.Group, string, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	if !group.HasMember(requesterID) {
		return nil, "", domain.ErrNotMember
	}

	if err := s.dropMember(ctx, group, requesterID); err != nil {
		return nil, "", err
	}

	remaining := lo.Without(group.Members, requesterID)
	if len(remaining) == 0 {
		if err := s.cascadeDelete(ctx, group); err != nil {
			return nil, "", err
		}
		s.log.Info().Str("group_id", groupID).Str("group_name", group.Name).Msg("last member left, group deleted")
		return nil, group.Name, nil
	}

	if group.IsAdmin(requesterID) {
		// Members are stored in join order; the first remaining one has been
		// around longest.
		successor := remaining[0]
		if err := s.groups.SetAdmin(ctx, groupID, successor); err != nil {
			return nil, "", fmt.Errorf("leave group: promote admin: %w", err)
		}
		group.AdminID = successor
		s.log.Info().Str("group_id", groupID).Str("user_id", successor).Msg("admin promoted")
	}

	group.Members = remaining
	s.log.Info().Str("group_id", groupID).Str("user_id", requesterID).Msg("member left")
	return group, group.Name, nil
}

// Delete removes a drained group. Only the admin may call it, and it fails
// with ErrGroupNotEmpty while anyone besides the admin is still a member.
func (s *GroupService) Delete(ctx context.Context, requesterID, groupID string) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsAdmin(requesterID) {
		return domain.ErrForbidden
	}
	if len(lo.Without(group.Members, group.AdminID)) > 0 {
		return domain.ErrGroupNotEmpty
	}

	return s.cascadeDelete(ctx, group)
}

// ListCandidates returns users eligible for invitation into groupID, or
// every user other than the requester when groupID is empty.
func (s *GroupService) ListCandidates(ctx context.Context, requesterID, groupID string) ([]*domain.User, error) {
	if groupID == "" {
		return s.users.FindAllExcept(ctx, requesterID)
	}

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.users.FindCandidates(ctx, requesterID, group.Members)
}

// dropMember removes userID from both halves of the membership edge.
func (s *GroupService) dropMember(ctx context.Context, group *domain.Group, userID string) error {
	if err := s.groups.RemoveMember(ctx, group.ID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if err := s.users.RemoveGroup(ctx, userID, group.ID); err != nil {
		// Compensate so the edge stays symmetric.
		if rbErr := s.groups.AddMembers(ctx, group.ID, []string{userID}); rbErr != nil {
			s.log.Error().Err(rbErr).Str("group_id", group.ID).Str("user_id", userID).Msg("rollback of member removal failed")
		}
		return fmt.Errorf("remove member: cross-reference user: %w", err)
	}
	return nil
}

// cascadeDelete removes the group and pulls its id out of every user record
// that might still reference it.
func (s *GroupService) cascadeDelete(ctx context.Context, group *domain.Group) error {
	if err := s.groups.Delete(ctx, group.ID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if err := s.users.RemoveGroupFromAll(ctx, group.ID); err != nil {
		return fmt.Errorf("delete group: clean references: %w", err)
	}
	s.log.Info().Str("group_id", group.ID).Str("group_name", group.Name).Msg("group deleted")
	return nil
}
