package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

const (
	maxNameLength = 150
	maxBioLength  = 1000
)

// UserService handles account administration and profile self-service.
type UserService struct {
	users port.UserRepository

	now func() time.Time
}

// NewUserService constructs a user service.
func NewUserService(users port.UserRepository) *UserService {
	return &UserService{
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateUserInput carries the administrative user creation payload.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// UpdateUserInput is a partial profile update. Nil fields stay untouched.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

// UserPage is a single page of a user listing.
type UserPage struct {
	Users []domain.User
	Total int
}

// ListUsers returns a page of accounts matching the filter.
func (s *UserService) ListUsers(ctx context.Context, filter port.UserFilter) (UserPage, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return UserPage{}, fmt.Errorf("list users: %w", err)
	}

	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return UserPage{}, fmt.Errorf("count users: %w", err)
	}

	return UserPage{Users: users, Total: total}, nil
}

// CreateUser provisions an account administratively. The account has no
// confirmation code until it goes through signup.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	verr := collectIdentityErrors(username, email)

	role := domain.RoleUser
	if input.Role != "" {
		role = domain.Role(input.Role)
		if !role.Valid() {
			verr.Add("role", fmt.Sprintf("%q is not a valid choice.", input.Role))
		}
	}

	validateProfileFields(verr, input.FirstName, input.LastName, input.Bio)

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Bio:       input.Bio,
		Role:      role,
		CreatedAt: s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSignupConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// GetUser loads an account by username.
func (s *UserService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUser applies a partial update to an account, including its role.
func (s *UserService) UpdateUser(ctx context.Context, username string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	verr := NewValidationError()

	if input.Role != nil {
		role := domain.Role(*input.Role)
		if !role.Valid() {
			verr.Add("role", fmt.Sprintf("%q is not a valid choice.", *input.Role))
		} else {
			user.Role = role
		}
	}

	applyProfilePatch(user, input, verr)

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSignupConflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes an account by username.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

// UpdateMe applies a partial self-service profile update. The role field is
// read-only here regardless of what the caller sends.
func (s *UserService) UpdateMe(ctx context.Context, actor *domain.User, input UpdateUserInput) (*domain.User, error) {
	if actor == nil {
		return nil, ErrUserNotFound
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	verr := NewValidationError()
	applyProfilePatch(user, input, verr)
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSignupConflict
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// applyProfilePatch copies the mutable profile fields onto user, skipping Role.
func applyProfilePatch(user *domain.User, input UpdateUserInput, verr *ValidationError) {
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		switch {
		case email == "":
			verr.Add("email", "This field may not be blank.")
		case len(email) > maxEmailLength:
			verr.Add("email", fmt.Sprintf("Ensure this field has no more than %d characters.", maxEmailLength))
		case !emailRegex.MatchString(email):
			verr.Add("email", "Enter a valid email address.")
		default:
			user.Email = email
		}
	}

	if input.FirstName != nil {
		if len(*input.FirstName) > maxNameLength {
			verr.Add("first_name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
		} else {
			user.FirstName = strings.TrimSpace(*input.FirstName)
		}
	}

	if input.LastName != nil {
		if len(*input.LastName) > maxNameLength {
			verr.Add("last_name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
		} else {
			user.LastName = strings.TrimSpace(*input.LastName)
		}
	}

	if input.Bio != nil {
		if len(*input.Bio) > maxBioLength {
			verr.Add("bio", fmt.Sprintf("Ensure this field has no more than %d characters.", maxBioLength))
		} else {
			user.Bio = *input.Bio
		}
	}
}

func collectIdentityErrors(username, email string) *ValidationError {
	verr := NewValidationError()

	switch {
	case username == "":
		verr.Add("username", "This field is required.")
	case len(username) > maxUsernameLength:
		verr.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLength))
	case !usernameRegex.MatchString(username):
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	case username == reservedUsername:
		verr.Add("username", "Username 'me' is not allowed.")
	}

	switch {
	case email == "":
		verr.Add("email", "This field is required.")
	case len(email) > maxEmailLength:
		verr.Add("email", fmt.Sprintf("Ensure this field has no more than %d characters.", maxEmailLength))
	case !emailRegex.MatchString(email):
		verr.Add("email", "Enter a valid email address.")
	}

	return verr
}

func validateProfileFields(verr *ValidationError, firstName, lastName, bio string) {
	if len(firstName) > maxNameLength {
		verr.Add("first_name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
	}
	if len(lastName) > maxNameLength {
		verr.Add("last_name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength))
	}
	if len(bio) > maxBioLength {
		verr.Add("bio", fmt.Sprintf("Ensure this field has no more than %d characters.", maxBioLength))
	}
}
