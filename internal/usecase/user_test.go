package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
)

func strPtr(s string) *string { return &s }

func TestCreateUserDefaultsRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "reader",
		Email:    "reader@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("expected default role user, got %q", user.Role)
	}
	if user.ConfirmationCode != "" {
		t.Error("administratively created account should have no confirmation code")
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newStubUserRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "reader",
		Email:    "reader@example.com",
		Role:     "overlord",
	})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields["role"]) == 0 {
		t.Error("expected role field error")
	}
}

func TestCreateUserRejectsOverlongFields(t *testing.T) {
	svc := NewUserService(newStubUserRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username:  strings.Repeat("a", maxUsernameLength+1),
		Email:     "reader@example.com",
		FirstName: strings.Repeat("b", maxNameLength+1),
		Bio:       strings.Repeat("c", maxBioLength+1),
	})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"username", "first_name", "bio"} {
		if len(verr.Fields[field]) == 0 {
			t.Errorf("expected error for field %q", field)
		}
	}
}

func TestUpdateUserChangesRole(t *testing.T) {
	repo := newStubUserRepo(testUser("u1", "reader", "reader@example.com"))
	svc := NewUserService(repo)

	user, err := svc.UpdateUser(context.Background(), "reader", UpdateUserInput{
		Role: strPtr("moderator"),
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if user.Role != domain.RoleModerator {
		t.Errorf("expected moderator, got %q", user.Role)
	}

	stored, _ := repo.GetByID(context.Background(), "u1")
	if stored.Role != domain.RoleModerator {
		t.Error("role change not persisted")
	}
}

func TestUpdateMeIgnoresRole(t *testing.T) {
	actor := testUser("u1", "reader", "reader@example.com")
	repo := newStubUserRepo(actor)
	svc := NewUserService(repo)

	user, err := svc.UpdateMe(context.Background(), &actor, UpdateUserInput{
		Role: strPtr("admin"),
		Bio:  strPtr("just a reader"),
	})
	if err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("self-service escalated role to %q", user.Role)
	}
	if user.Bio != "just a reader" {
		t.Errorf("bio not applied, got %q", user.Bio)
	}
}

func TestUpdateMeRejectsBlankEmail(t *testing.T) {
	actor := testUser("u1", "reader", "reader@example.com")
	svc := NewUserService(newStubUserRepo(actor))

	_, err := svc.UpdateMe(context.Background(), &actor, UpdateUserInput{
		Email: strPtr("   "),
	})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields["email"]) == 0 {
		t.Error("expected email field error")
	}
}

func TestGetUserNotFound(t *testing.T) {
	svc := NewUserService(newStubUserRepo())

	if _, err := svc.GetUser(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUserByUsername(t *testing.T) {
	repo := newStubUserRepo(testUser("u1", "reader", "reader@example.com"))
	svc := NewUserService(repo)

	if err := svc.DeleteUser(context.Background(), "reader"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "u1"); err == nil {
		t.Error("user still present after delete")
	}

	if err := svc.DeleteUser(context.Background(), "reader"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestListUsersReturnsTotal(t *testing.T) {
	repo := newStubUserRepo(
		testUser("u1", "alice", "alice@example.com"),
		testUser("u2", "bob", "bob@example.com"),
	)
	svc := NewUserService(repo)

	page, err := svc.ListUsers(context.Background(), port.UserFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected total 2, got %d", page.Total)
	}
	if len(page.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(page.Users))
	}
}
