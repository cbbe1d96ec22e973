package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	user := domain.User{
		ID:               "user-123",
		Username:         "reader",
		Email:            "reader@example.com",
		Role:             domain.RoleUser,
		ConfirmationCode: "code-123",
		CreatedAt:        createdAt,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			user.ID,
			user.Username,
			user.Email,
			"",
			"",
			"",
			user.Role,
			user.ConfirmationCode,
			false,
			false,
			user.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "username", "email", "first_name", "last_name", "bio", "role", "confirmation_code", "is_staff", "is_superuser", "created_at",
	}).AddRow(
		"user-1", "reader", "reader@example.com", "", "", "", domain.RoleModerator, nil, false, false, createdAt,
	)

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs("reader").WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "reader")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected user id user-1, got %s", user.ID)
	}
	if user.Role != domain.RoleModerator {
		t.Fatalf("expected moderator role, got %s", user.Role)
	}
	if user.ConfirmationCode != "" {
		t.Fatalf("expected empty confirmation code, got %q", user.ConfirmationCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsernameNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{
		"id", "username", "email", "first_name", "last_name", "bio", "role", "confirmation_code", "is_staff", "is_superuser", "created_at",
	})

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs("ghost").WillReturnRows(rows)

	if _, err := repo.GetByUsername(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailFoldsCase(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "username", "email", "first_name", "last_name", "bio", "role", "confirmation_code", "is_staff", "is_superuser", "created_at",
	}).AddRow(
		"user-1", "reader", "reader@example.com", "", "", "", domain.RoleUser, nil, false, false, createdAt,
	)

	mock.ExpectQuery(`SELECT .*FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Reader@Example.COM").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "Reader@Example.COM")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.Email != "reader@example.com" {
		t.Fatalf("expected stored email, got %s", user.Email)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdateConfirmationCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET confirmation_code`).
		WithArgs("new-code", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateConfirmationCode(context.Background(), "user-1", "new-code"); err != nil {
		t.Fatalf("UpdateConfirmationCode returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_DeleteMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`DELETE FROM users`).
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "username", "email", "first_name", "last_name", "bio", "role", "confirmation_code", "is_staff", "is_superuser", "created_at",
	}).AddRow(
		"user-1", "alice", "alice@example.com", "", "", "", domain.RoleUser, nil, false, false, createdAt,
	).AddRow(
		"user-2", "bob", "bob@example.com", "", "", "", domain.RoleAdmin, nil, true, false, createdAt,
	)

	mock.ExpectQuery(`SELECT .*FROM users.*ORDER BY username`).WillReturnRows(rows)

	users, err := repo.List(context.Background(), port.UserFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if !users[1].IsStaff {
		t.Fatalf("expected staff flag to survive scan")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{"count"}).AddRow(int64(42))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).WillReturnRows(rows)

	count, err := repo.Count(context.Background(), port.UserFilter{})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 42 {
		t.Fatalf("expected 42, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
