package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chatwire/chat-system/internal/core/domain"
	"github.com/chatwire/chat-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests
// ---------------------------------------------------------------------------

type memUserRepo struct {
	users map[string]*domain.User // keyed by id
	seq   int

	addGroupErr error // if set, AddGroup returns this error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

// seed registers a user and returns its id.
func (r *memUserRepo) seed(userName string) string {
	r.seq++
	id := fmt.Sprintf("u%d", r.seq)
	r.users[id] = &domain.User{
		ID:       id,
		UserName: userName,
		Email:    userName + "@example.com",
		Role:     domain.RoleUser,
		Groups:   []string{},
	}
	return id
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Groups = append([]string(nil), u.Groups...)
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.UserName == user.UserName || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("u%d", r.seq)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) FindByUserName(_ context.Context, userName string) (*domain.User, error) {
	for _, u := range r.users {
		if u.UserName == userName {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindAllExcept(_ context.Context, excludeID string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.ID != excludeID {
			out = append(out, cloneUser(u))
		}
	}
	sortUsers(out)
	return out, nil
}

func (r *memUserRepo) FindCandidates(_ context.Context, excludeID string, memberIDs []string) ([]*domain.User, error) {
	excluded := map[string]struct{}{excludeID: {}}
	for _, id := range memberIDs {
		excluded[id] = struct{}{}
	}
	var out []*domain.User
	for _, u := range r.users {
		if _, skip := excluded[u.ID]; !skip {
			out = append(out, cloneUser(u))
		}
	}
	sortUsers(out)
	return out, nil
}

func (r *memUserRepo) FilterExisting(_ context.Context, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if _, ok := r.users[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *memUserRepo) AddGroup(_ context.Context, userIDs []string, groupID string) error {
	if r.addGroupErr != nil {
		return r.addGroupErr
	}
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok && !u.MemberOf(groupID) {
			u.Groups = append(u.Groups, groupID)
		}
	}
	return nil
}

func (r *memUserRepo) RemoveGroup(_ context.Context, userID string, groupID string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	out := u.Groups[:0]
	for _, g := range u.Groups {
		if g != groupID {
			out = append(out, g)
		}
	}
	u.Groups = out
	return nil
}

func (r *memUserRepo) RemoveGroupFromAll(ctx context.Context, groupID string) error {
	for id := range r.users {
		if err := r.RemoveGroup(ctx, id, groupID); err != nil {
			return err
		}
	}
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func sortUsers(users []*domain.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}

// ---------------------------------------------------------------------------

type memGroupRepo struct {
	groups map[string]*domain.Group
	seq    int
}

func newMemGroupRepo() *memGroupRepo {
	return &memGroupRepo{groups: make(map[string]*domain.Group)}
}

func cloneGroup(g *domain.Group) *domain.Group {
	clone := *g
	clone.Members = append([]string(nil), g.Members...)
	return &clone
}

func (r *memGroupRepo) Create(_ context.Context, group *domain.Group) (*domain.Group, error) {
	for _, g := range r.groups {
		if g.Name == group.Name {
			return nil, domain.ErrGroupExists
		}
	}
	r.seq++
	clone := cloneGroup(group)
	clone.ID = fmt.Sprintf("g%d", r.seq)
	r.groups[clone.ID] = clone
	return cloneGroup(clone), nil
}

func (r *memGroupRepo) FindByID(_ context.Context, id string) (*domain.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return cloneGroup(g), nil
}

func (r *memGroupRepo) FindByName(_ context.Context, name string) (*domain.Group, error) {
	for _, g := range r.groups {
		if g.Name == name {
			return cloneGroup(g), nil
		}
	}
	return nil, domain.ErrGroupNotFound
}

func (r *memGroupRepo) AddMembers(_ context.Context, groupID string, userIDs []string) error {
	g, ok := r.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	for _, id := range userIDs {
		if !g.HasMember(id) {
			g.Members = append(g.Members, id)
		}
	}
	return nil
}

func (r *memGroupRepo) RemoveMember(_ context.Context, groupID string, userID string) error {
	g, ok := r.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	out := g.Members[:0]
	for _, m := range g.Members {
		if m != userID {
			out = append(out, m)
		}
	}
	g.Members = out
	return nil
}

func (r *memGroupRepo) SetAdmin(_ context.Context, groupID string, userID string) error {
	g, ok := r.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	g.AdminID = userID
	return nil
}

func (r *memGroupRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.groups[id]; !ok {
		return domain.ErrGroupNotFound
	}
	delete(r.groups, id)
	return nil
}

// ---------------------------------------------------------------------------

type memMessageRepo struct {
	messages map[string]*domain.Message
	seq      int
	createErr error
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[string]*domain.Message)}
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *msg
	clone.ID = fmt.Sprintf("m%d", r.seq)
	r.messages[clone.ID] = &clone
	copied := clone
	return &copied, nil
}

func (r *memMessageRepo) FindByID(_ context.Context, id string) (*domain.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *memMessageRepo) FindDirect(_ context.Context, userA, userB string) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			clone := *m
			out = append(out, &clone)
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *memMessageRepo) FindByGroup(_ context.Context, groupID string) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.messages {
		if m.GroupID == groupID {
			clone := *m
			out = append(out, &clone)
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *memMessageRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.messages[id]; !ok {
		return domain.ErrMessageNotFound
	}
	delete(r.messages, id)
	return nil
}

func sortMessages(msgs []*domain.Message) {
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
}

// ---------------------------------------------------------------------------

// recordPublisher captures published events for assertions.
type recordPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *recordPublisher) Publish(room string, event ports.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	event.Room = room
	p.events = append(p.events, event)
}

func (p *recordPublisher) all() []ports.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.Event(nil), p.events...)
}

// ---------------------------------------------------------------------------

type memTokenStore struct {
	tokens map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]string)}
}

func (s *memTokenStore) Save(_ context.Context, token, userID string) error {
	s.tokens[token] = userID
	return nil
}

func (s *memTokenStore) Redeem(_ context.Context, token string) (string, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return "", domain.ErrResetTokenInvalid
	}
	delete(s.tokens, token)
	return userID, nil
}
