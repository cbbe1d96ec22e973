package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/security"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

const (
	maxUsernameLength = 150
	maxEmailLength    = 254

	reservedUsername = "me"

	confirmationSubject = "YaMDB confirmation code"
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// SignupService onboards accounts through the passwordless email flow.
type SignupService struct {
	users  port.UserRepository
	tx     port.UserTxRunner
	mailer port.Mailer
	events port.EventPublisher
	logger *zap.Logger

	generateCode func() (string, error)
	now          func() time.Time
}

// NewSignupService constructs a signup service.
func NewSignupService(users port.UserRepository, tx port.UserTxRunner, mailer port.Mailer, events port.EventPublisher, logger *zap.Logger) *SignupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignupService{
		users:        users,
		tx:           tx,
		mailer:       mailer,
		events:       events,
		logger:       logger,
		generateCode: security.GenerateConfirmationCode,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SignupInput carries the signup request payload.
type SignupInput struct {
	Username string
	Email    string
}

// SignupResult echoes the accepted identity back to the caller.
type SignupResult struct {
	Username string
	Email    string
}

// Signup registers a new account or refreshes the confirmation code for an
// existing one. The user write and the confirmation email form a single
// all-or-nothing unit: when mail delivery fails nothing is persisted.
func (s *SignupService) Signup(ctx context.Context, input SignupInput) (SignupResult, error) {
	var zero SignupResult

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if err := validateSignupInput(username, email); err != nil {
		return zero, err
	}

	code, err := s.generateCode()
	if err != nil {
		return zero, fmt.Errorf("generate confirmation code: %w", err)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return zero, fmt.Errorf("lookup user by username: %w", err)
	}

	if existing != nil {
		if !strings.EqualFold(existing.Email, email) {
			verr := NewValidationError()
			verr.Add("username", "A user with that username already exists.")
			return zero, verr
		}
		return s.refresh(ctx, *existing, code)
	}

	byEmail, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return zero, fmt.Errorf("lookup user by email: %w", err)
	}
	if byEmail != nil {
		verr := NewValidationError()
		verr.Add("email", "A user with that email already exists.")
		return zero, verr
	}

	return s.create(ctx, username, email, code)
}

// refresh re-issues the confirmation code for an account signing up again
// with its original username and email pair.
func (s *SignupService) refresh(ctx context.Context, user domain.User, code string) (SignupResult, error) {
	var zero SignupResult

	err := s.tx.InUserTx(ctx, func(users port.UserRepository) error {
		if err := users.UpdateConfirmationCode(ctx, user.ID, code); err != nil {
			return fmt.Errorf("update confirmation code: %w", err)
		}
		if err := s.sendCode(ctx, user.Email, code); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	s.publishSignedUp(ctx, user, true)

	return SignupResult{Username: user.Username, Email: user.Email}, nil
}

func (s *SignupService) create(ctx context.Context, username, email, code string) (SignupResult, error) {
	var zero SignupResult

	user := domain.User{
		ID:               uuid.NewString(),
		Username:         username,
		Email:            email,
		Role:             domain.RoleUser,
		ConfirmationCode: code,
		CreatedAt:        s.now(),
	}

	err := s.tx.InUserTx(ctx, func(users port.UserRepository) error {
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrSignupConflict
			}
			return fmt.Errorf("create user: %w", err)
		}
		if err := s.sendCode(ctx, email, code); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	s.publishSignedUp(ctx, user, false)

	return SignupResult{Username: username, Email: email}, nil
}

func (s *SignupService) sendCode(ctx context.Context, email, code string) error {
	mail := port.Mail{
		To:      []string{email},
		Subject: confirmationSubject,
		Body:    fmt.Sprintf("Your confirmation code: %s", code),
	}

	if err := s.mailer.Send(ctx, mail); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

func (s *SignupService) publishSignedUp(ctx context.Context, user domain.User, restored bool) {
	if s.events == nil {
		return
	}

	event := domain.UserSignedUpEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Restored: restored,
		SignedAt: s.now(),
	}

	if err := s.events.PublishUserSignedUp(ctx, event); err != nil {
		s.logger.Warn("publish user.signed_up failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

func validateSignupInput(username, email string) error {
	return collectIdentityErrors(username, email).ErrOrNil()
}
