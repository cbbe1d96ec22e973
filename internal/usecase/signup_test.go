package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestSignupService(t *testing.T, repo *stubUserRepo, mailer *stubMailer, events *stubPublisher) *SignupService {
	t.Helper()

	svc := NewSignupService(repo, &stubTxRunner{repo: repo}, mailer, events, zaptest.NewLogger(t))
	svc.generateCode = func() (string, error) { return "testcode1234567890testcode123456", nil }
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSignupCreatesUserAndSendsCode(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	events := &stubPublisher{}
	svc := newTestSignupService(t, repo, mailer, events)

	result, err := svc.Signup(context.Background(), SignupInput{
		Username: "reader",
		Email:    "reader@example.com",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if result.Username != "reader" || result.Email != "reader@example.com" {
		t.Fatalf("unexpected result: %+v", result)
	}

	user, err := repo.GetByUsername(context.Background(), "reader")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.ConfirmationCode != "testcode1234567890testcode123456" {
		t.Errorf("confirmation code not stored, got %q", user.ConfirmationCode)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}
	if mailer.sent[0].To[0] != "reader@example.com" {
		t.Errorf("mail sent to %q", mailer.sent[0].To[0])
	}

	if len(events.signups) != 1 {
		t.Fatalf("expected 1 signup event, got %d", len(events.signups))
	}
	if events.signups[0].Restored {
		t.Error("fresh signup published as restored")
	}
}

func TestSignupReportsAllMissingFields(t *testing.T) {
	svc := newTestSignupService(t, newStubUserRepo(), &stubMailer{}, &stubPublisher{})

	_, err := svc.Signup(context.Background(), SignupInput{})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["username"]; !ok {
		t.Error("username error missing")
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Error("email error missing")
	}
}

func TestSignupRejectsReservedUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestSignupService(t, repo, &stubMailer{}, &stubPublisher{})

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "me",
		Email:    "me@example.com",
	})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields["username"]) == 0 {
		t.Error("reserved username accepted")
	}

	// The reservation is an exact match; "Me" is an ordinary username.
	if _, err := svc.Signup(context.Background(), SignupInput{
		Username: "Me",
		Email:    "capital-me@example.com",
	}); err != nil {
		t.Fatalf("username Me rejected: %v", err)
	}
	if _, err := repo.GetByUsername(context.Background(), "Me"); err != nil {
		t.Fatalf("user Me not persisted: %v", err)
	}
}

func TestSignupRejectsInvalidUsernameCharacters(t *testing.T) {
	svc := newTestSignupService(t, newStubUserRepo(), &stubMailer{}, &stubPublisher{})

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "bad name!",
		Email:    "ok@example.com",
	})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields["username"]) == 0 {
		t.Error("invalid username accepted")
	}
}

func TestSignupUsernameTakenByDifferentEmail(t *testing.T) {
	repo := newStubUserRepo(testUser("u1", "reader", "original@example.com"))
	svc := newTestSignupService(t, repo, &stubMailer{}, &stubPublisher{})

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "reader",
		Email:    "other@example.com",
	})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields["username"]) == 0 {
		t.Error("expected username conflict error")
	}
}

func TestSignupEmailTakenByDifferentUsername(t *testing.T) {
	repo := newStubUserRepo(testUser("u1", "reader", "reader@example.com"))
	svc := newTestSignupService(t, repo, &stubMailer{}, &stubPublisher{})

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "other",
		Email:    "reader@example.com",
	})

	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields["email"]) == 0 {
		t.Error("expected email conflict error")
	}
}

func TestSignupRefreshesCodeForSameIdentity(t *testing.T) {
	existing := testUser("u1", "reader", "reader@example.com")
	existing.ConfirmationCode = "oldcode"
	repo := newStubUserRepo(existing)
	mailer := &stubMailer{}
	events := &stubPublisher{}
	svc := newTestSignupService(t, repo, mailer, events)

	// Email comparison is case-insensitive.
	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "reader",
		Email:    "Reader@Example.com",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	user, _ := repo.GetByID(context.Background(), "u1")
	if user.ConfirmationCode == "oldcode" {
		t.Error("confirmation code was not refreshed")
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}
	if len(events.signups) != 1 || !events.signups[0].Restored {
		t.Error("expected a restored signup event")
	}
}

func TestSignupMailFailureRollsBackUser(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{err: errors.New("smtp refused")}
	svc := newTestSignupService(t, repo, mailer, &stubPublisher{})

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "reader",
		Email:    "reader@example.com",
	})
	if !errors.Is(err, ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}

	if _, err := repo.GetByUsername(context.Background(), "reader"); err == nil {
		t.Error("user persisted despite mail failure")
	}
}

func TestSignupPublishFailureDoesNotFailRequest(t *testing.T) {
	repo := newStubUserRepo()
	events := &stubPublisher{failWith: errors.New("broker down")}
	svc := newTestSignupService(t, repo, &stubMailer{}, events)

	_, err := svc.Signup(context.Background(), SignupInput{
		Username: "reader",
		Email:    "reader@example.com",
	})
	if err != nil {
		t.Fatalf("Signup failed on publish error: %v", err)
	}
}
