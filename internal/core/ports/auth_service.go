package ports

import (
	"context"

	"github.com/chatwire/chat-system/internal/core/domain"
)

// AuthService implements the credential collaborator: account creation,
// login with JWT issuance, and the password reset token flow. Mail delivery
// for reset links is out of scope; the token is returned to the caller.
type AuthService interface {
	Register(ctx context.Context, userName, email, password string) (*domain.User, error)
	// Login accepts a user name or an email as identifier and returns a signed
	// bearer token together with the authenticated user.
	Login(ctx context.Context, identifier, password string) (string, *domain.User, error)
	IssueResetToken(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}
