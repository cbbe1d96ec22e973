package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/config"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/security"
)

func newTestTokenService(t *testing.T, repo *stubUserRepo) *TokenService {
	t.Helper()

	issuer, err := security.NewTokenIssuer(config.JWTSettings{
		Secret:         "test-secret-for-token-service",
		Issuer:         "yamdb-test",
		AccessTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	return NewTokenService(repo, issuer, zaptest.NewLogger(t))
}

func TestIssueTokenReportsAllMissingFields(t *testing.T) {
	svc := newTestTokenService(t, newStubUserRepo())

	_, err := svc.IssueToken(context.Background(), IssueTokenInput{})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["username"]; !ok {
		t.Error("username error missing")
	}
	if _, ok := verr.Fields["confirmation_code"]; !ok {
		t.Error("confirmation_code error missing")
	}
}

func TestIssueTokenUnknownUser(t *testing.T) {
	svc := newTestTokenService(t, newStubUserRepo())

	_, err := svc.IssueToken(context.Background(), IssueTokenInput{
		Username:         "ghost",
		ConfirmationCode: "whatever",
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIssueTokenWrongCode(t *testing.T) {
	user := testUser("u1", "reader", "reader@example.com")
	user.ConfirmationCode = "correct-code"
	svc := newTestTokenService(t, newStubUserRepo(user))

	_, err := svc.IssueToken(context.Background(), IssueTokenInput{
		Username:         "reader",
		ConfirmationCode: "wrong-code",
	})
	if !errors.Is(err, ErrConfirmationCodeInvalid) {
		t.Fatalf("expected ErrConfirmationCodeInvalid, got %v", err)
	}
}

func TestIssueTokenRejectsAccountWithoutCode(t *testing.T) {
	// Administratively provisioned accounts have no code until signup.
	svc := newTestTokenService(t, newStubUserRepo(testUser("u1", "reader", "reader@example.com")))

	_, err := svc.IssueToken(context.Background(), IssueTokenInput{
		Username:         "reader",
		ConfirmationCode: "",
	})
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("expected validation error for blank code, got %v", err)
	}

	_, err = svc.IssueToken(context.Background(), IssueTokenInput{
		Username:         "reader",
		ConfirmationCode: "anything",
	})
	if !errors.Is(err, ErrConfirmationCodeInvalid) {
		t.Fatalf("expected ErrConfirmationCodeInvalid, got %v", err)
	}
}

func TestIssueTokenAndAuthenticateRoundTrip(t *testing.T) {
	user := testUser("u1", "reader", "reader@example.com")
	user.ConfirmationCode = "correct-code"
	repo := newStubUserRepo(user)
	svc := newTestTokenService(t, repo)

	token, err := svc.IssueToken(context.Background(), IssueTokenInput{
		Username:         "reader",
		ConfirmationCode: "correct-code",
	})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if token == "" {
		t.Fatal("empty token issued")
	}

	actor, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if actor.ID != "u1" || actor.Username != "reader" {
		t.Errorf("unexpected actor: %+v", actor)
	}
}

func TestIssueTokenSameCodeTwice(t *testing.T) {
	// Codes stay valid until re-signup overwrites them, so a second
	// exchange with the same code must succeed.
	user := testUser("u1", "reader", "reader@example.com")
	user.ConfirmationCode = "correct-code"
	repo := newStubUserRepo(user)
	svc := newTestTokenService(t, repo)

	input := IssueTokenInput{
		Username:         "reader",
		ConfirmationCode: "correct-code",
	}

	if _, err := svc.IssueToken(context.Background(), input); err != nil {
		t.Fatalf("first exchange: %v", err)
	}

	token, err := svc.IssueToken(context.Background(), input)
	if err != nil {
		t.Fatalf("second exchange: %v", err)
	}
	if token == "" {
		t.Fatal("second exchange returned empty token")
	}

	stored, err := repo.GetByUsername(context.Background(), "reader")
	if err != nil {
		t.Fatalf("user lookup: %v", err)
	}
	if stored.ConfirmationCode != "correct-code" {
		t.Errorf("code changed after exchange: %q", stored.ConfirmationCode)
	}
}

func TestAuthenticateRejectsDeletedAccount(t *testing.T) {
	user := testUser("u1", "reader", "reader@example.com")
	user.ConfirmationCode = "correct-code"
	repo := newStubUserRepo(user)
	svc := newTestTokenService(t, repo)

	token, err := svc.IssueToken(context.Background(), IssueTokenInput{
		Username:         "reader",
		ConfirmationCode: "correct-code",
	})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if err := repo.Delete(context.Background(), "u1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, security.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	svc := newTestTokenService(t, newStubUserRepo())

	if _, err := svc.Authenticate(context.Background(), "not.a.token"); !errors.Is(err, security.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
