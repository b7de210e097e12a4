package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/security"
	"github.com/CharlesTPAquino/RegistroMM/internal/repository"
)

func newAuthService(t *testing.T, repo *fakeAccountRepo, publisher *fakePublisher) *AuthService {
	t.Helper()

	authority, err := security.NewTokenAuthority([]byte("0123456789abcdef0123456789abcdef"), 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenAuthority returned error: %v", err)
	}

	service, err := NewAuthService(repo, publisher, authority, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}
	return service
}

func storedAccount(t *testing.T, password string) *domain.Account {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	return &domain.Account{
		ID:           42,
		Username:     "charles_a",
		Email:        "charles@example.com",
		PasswordHash: hash,
		CreatedAt:    time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestLoginIssuesTokenForValidCredentials(t *testing.T) {
	repo := &fakeAccountRepo{findResult: storedAccount(t, "Str0ng!Pass")}
	publisher := &fakePublisher{}
	service := newAuthService(t, repo, publisher)

	result, err := service.Login(context.Background(), LoginInput{
		Email:    "charles@example.com",
		Password: "Str0ng!Pass",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := service.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}

	if len(publisher.attempts) != 1 || !publisher.attempts[0].Succeeded {
		t.Fatalf("expected one successful attempt event, got %+v", publisher.attempts)
	}
}

func TestLoginUnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	unknownRepo := &fakeAccountRepo{findErr: repository.ErrNotFound}
	unknownService := newAuthService(t, unknownRepo, &fakePublisher{})

	_, unknownErr := unknownService.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "Str0ng!Pass",
	})

	mismatchRepo := &fakeAccountRepo{findResult: storedAccount(t, "Str0ng!Pass")}
	mismatchService := newAuthService(t, mismatchRepo, &fakePublisher{})

	_, mismatchErr := mismatchService.Login(context.Background(), LoginInput{
		Email:    "charles@example.com",
		Password: "Wr0ng!Pass",
	})

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
	}
	if !errors.Is(mismatchErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", mismatchErr)
	}
	if unknownErr.Error() != mismatchErr.Error() {
		t.Fatal("expected identical error messages for both failure modes")
	}
}

func TestLoginUnknownEmailStillVerifiesAgainstReferenceHash(t *testing.T) {
	repo := &fakeAccountRepo{findErr: repository.ErrNotFound}
	service := newAuthService(t, repo, &fakePublisher{})

	verifyCalls := 0
	service.verify = func(password, encoded string) bool {
		verifyCalls++
		if encoded != service.dummyHash {
			t.Fatalf("expected verification against the reference hash")
		}
		return false
	}

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "Str0ng!Pass",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if verifyCalls != 1 {
		t.Fatalf("expected exactly one verification, got %d", verifyCalls)
	}
}

func TestLoginRecordsFailedAttemptEvent(t *testing.T) {
	repo := &fakeAccountRepo{findResult: storedAccount(t, "Str0ng!Pass")}
	publisher := &fakePublisher{}
	service := newAuthService(t, repo, publisher)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "charles@example.com",
		Password: "Wr0ng!Pass",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if len(publisher.attempts) != 1 {
		t.Fatalf("expected one attempt event, got %d", len(publisher.attempts))
	}
	attempt := publisher.attempts[0]
	if attempt.Succeeded {
		t.Fatal("expected a failed attempt event")
	}
	if attempt.FailureKind != domain.LoginFailureInvalidCredentials {
		t.Fatalf("expected invalid_credentials failure kind, got %q", attempt.FailureKind)
	}
}

func TestLoginWrapsRepositoryFailures(t *testing.T) {
	repo := &fakeAccountRepo{findErr: errors.New("connection reset")}
	service := newAuthService(t, repo, &fakePublisher{})

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "charles@example.com",
		Password: "Str0ng!Pass",
	})
	if err == nil {
		t.Fatal("expected error for repository failure")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("expected infrastructure failures to stay distinct from credential failures")
	}
}

func TestValidateTokenRejectsExpiredSession(t *testing.T) {
	repo := &fakeAccountRepo{findResult: storedAccount(t, "Str0ng!Pass")}
	service := newAuthService(t, repo, &fakePublisher{})

	issued := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return issued }

	result, err := service.Login(context.Background(), LoginInput{
		Email:    "charles@example.com",
		Password: "Str0ng!Pass",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	service.now = func() time.Time { return issued.Add(24 * time.Hour) }
	if _, err := service.ValidateToken(result.Token); !errors.Is(err, security.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
