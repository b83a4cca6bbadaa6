package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatwire/chat-system/internal/core/domain"
	"github.com/chatwire/chat-system/internal/core/ports"
)

// ResetTokenStore abstracts the password reset token store (Redis).
type ResetTokenStore interface {
	Save(ctx context.Context, token, userID string) error
	// Redeem returns the user id bound to token and invalidates it. A missing
	// or expired token yields domain.ErrResetTokenInvalid.
	Redeem(ctx context.Context, token string) (string, error)
}

// AuthService implements registration, login, and the reset token flow.
type AuthService struct {
	users     ports.UserRepository
	tokens    ResetTokenStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ResetTokenStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, tokens: tokens, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

func (s *AuthService) Register(ctx context.Context, userName, email, password string) (*domain.User, error) {
	if userName == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Groups:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("user_name", created.UserName).Msg("user registered")
	return created, nil
}

// Login authenticates by user name or email and returns a signed bearer token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	if identifier == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUserName(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.users.FindByEmail(ctx, identifier)
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// IssueResetToken binds a fresh single-use token to the account registered
// under email. Delivering the token to the user (mail) happens elsewhere.
func (s *AuthService) IssueResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.tokens.Save(ctx, token, user.ID); err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset token issued")
	return token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}

	userID, err := s.tokens.Redeem(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Msg("password reset")
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.UserName,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
