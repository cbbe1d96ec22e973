package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/security"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

// TokenService exchanges confirmation codes for access tokens and resolves
// bearer tokens back into accounts.
type TokenService struct {
	users  port.UserRepository
	issuer *security.TokenIssuer
	logger *zap.Logger
}

// NewTokenService constructs a token service.
func NewTokenService(users port.UserRepository, issuer *security.TokenIssuer, logger *zap.Logger) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{users: users, issuer: issuer, logger: logger}
}

// IssueTokenInput carries the token request payload.
type IssueTokenInput struct {
	Username         string
	ConfirmationCode string
}

// IssueToken validates the confirmation code and returns a signed access
// token. An unknown username is reported distinctly from a wrong code so the
// transport can answer 404 versus 400.
func (s *TokenService) IssueToken(ctx context.Context, input IssueTokenInput) (string, error) {
	username := strings.TrimSpace(input.Username)
	code := strings.TrimSpace(input.ConfirmationCode)

	verr := NewValidationError()
	if username == "" {
		verr.Add("username", "This field is required.")
	}
	if code == "" {
		verr.Add("confirmation_code", "This field is required.")
	}
	if err := verr.ErrOrNil(); err != nil {
		return "", err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if user.ConfirmationCode == "" ||
		subtle.ConstantTimeCompare([]byte(user.ConfirmationCode), []byte(code)) != 1 {
		s.logger.Info("confirmation code rejected", zap.String("username", username))
		return "", ErrConfirmationCodeInvalid
	}

	token, err := s.issuer.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	return token, nil
}

// Authenticate resolves a bearer token into the account it identifies. The
// account is re-read from storage so role changes take effect immediately.
func (s *TokenService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, security.ErrTokenInvalid
		}
		return nil, fmt.Errorf("load token subject: %w", err)
	}

	return user, nil
}
