package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/chatwire/chat-system/internal/core/domain"
	"github.com/chatwire/chat-system/internal/core/ports"
)

// newTestContext builds an echo context the way the router configures it,
// with the request validator and the authenticated user id in place.
func newTestContext(t *testing.T, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("undecodable response %q: %v", rec.Body.String(), err)
	}
	return out
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, httpErr.Code, httpErr.Message)
	}
}

// ---------------------------------------------------------------------------
// Stub services
// ---------------------------------------------------------------------------

type stubChatService struct {
	sendInput ports.SendInput
	sendMsg   *domain.Message
	sendErr   error

	retrieved  []ports.ConversationMessage
	retrieveErr error

	deletedBy string
	deletedID string
	deleteErr error
}

func (s *stubChatService) Send(_ context.Context, input ports.SendInput) (*domain.Message, error) {
	s.sendInput = input
	return s.sendMsg, s.sendErr
}

func (s *stubChatService) Retrieve(_ context.Context, _, _ string, _ ports.RetrieveMode) ([]ports.ConversationMessage, error) {
	return s.retrieved, s.retrieveErr
}

func (s *stubChatService) Delete(_ context.Context, requesterID, messageID string) error {
	s.deletedBy = requesterID
	s.deletedID = messageID
	return s.deleteErr
}

type stubGroupService struct {
	group     *domain.Group
	addResult *ports.AddMembersResult
	leaveName string
	users     []*domain.User
	err       error
}

func (s *stubGroupService) Create(_ context.Context, _, _ string, _ []string) (*domain.Group, error) {
	return s.group, s.err
}

func (s *stubGroupService) AddMembers(_ context.Context, _, _ string, _ []string) (*ports.AddMembersResult, error) {
	return s.addResult, s.err
}

func (s *stubGroupService) RemoveMember(_ context.Context, _, _, _ string) (*domain.Group, error) {
	return s.group, s.err
}

func (s *stubGroupService) Leave(_ context.Context, _, _ string) (*domain.Group, string, error) {
	return s.group, s.leaveName, s.err
}

func (s *stubGroupService) Delete(_ context.Context, _, _ string) error {
	return s.err
}

func (s *stubGroupService) ListCandidates(_ context.Context, _, _ string) ([]*domain.User, error) {
	return s.users, s.err
}

type stubAuthService struct {
	user  *domain.User
	token string
	err   error

	resetToken    string
	resetPassword string
}

func (s *stubAuthService) Register(_ context.Context, _, _, _ string) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (string, *domain.User, error) {
	return s.token, s.user, s.err
}

func (s *stubAuthService) IssueResetToken(_ context.Context, _ string) (string, error) {
	return s.resetToken, s.err
}

func (s *stubAuthService) ResetPassword(_ context.Context, token, password string) error {
	s.resetToken = token
	s.resetPassword = password
	return s.err
}
