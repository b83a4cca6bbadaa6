package domain

import (
	"errors"
	"time"
)

var ErrGroupNotFound = errors.New("group not found")
var ErrMembersRequired = errors.New("at least one other member is required")
var ErrGroupExists = errors.New("group already exists")
var ErrGroupNotEmpty = errors.New("group still has members")
var ErrNotMember = errors.New("not a member of the group")
var ErrForbidden = errors.New("access forbidden")

// Group is a named conversation with a mutable member set. AdminID always
// references one of Members while the group exists; every mutation that could
// break that invariant is rejected or repaired by the group service.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"groupName"`
	AdminID   string    `json:"adminId"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether userID is in the member set.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID is the group's admin.
func (g *Group) IsAdmin(userID string) bool {
	return g.AdminID == userID
}
