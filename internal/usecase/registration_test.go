package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/security"
	"github.com/CharlesTPAquino/RegistroMM/internal/repository"
)

type fakeAccountRepo struct {
	insertCalls int
	insertedAt  []domain.AccountDraft
	insertErr   error
	nextID      int64

	findCalls  int
	findResult *domain.Account
	findErr    error
}

func (f *fakeAccountRepo) InsertUnique(ctx context.Context, draft domain.AccountDraft) (*domain.Account, error) {
	f.insertCalls++
	f.insertedAt = append(f.insertedAt, draft)
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	id := f.nextID
	if id == 0 {
		id = 1
	}
	return &domain.Account{
		ID:           id,
		Username:     draft.Username,
		Email:        draft.Email,
		PasswordHash: draft.PasswordHash,
		CreatedAt:    time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findResult, nil
}

type fakePublisher struct {
	registered []domain.AccountRegisteredEvent
	attempts   []domain.LoginAttemptEvent
	publishErr error
}

func (f *fakePublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	f.registered = append(f.registered, event)
	return f.publishErr
}

func (f *fakePublisher) PublishLoginAttempt(ctx context.Context, event domain.LoginAttemptEvent) error {
	f.attempts = append(f.attempts, event)
	return f.publishErr
}

func (f *fakePublisher) PublishStartupValidated(ctx context.Context, event domain.StartupValidatedEvent) error {
	return f.publishErr
}

func newRegistrationService(t *testing.T, repo *fakeAccountRepo, publisher *fakePublisher) *RegistrationService {
	t.Helper()
	return NewRegistrationService(repo, publisher, security.DefaultPasswordValidator(), nil, zaptest.NewLogger(t))
}

func validRegistration() RegistrationInput {
	return RegistrationInput{
		Username: "charles_a",
		Email:    "charles@example.com",
		Password: "Str0ng!Pass",
	}
}

func TestRegisterCreatesAccount(t *testing.T) {
	repo := &fakeAccountRepo{nextID: 7}
	publisher := &fakePublisher{}
	service := newRegistrationService(t, repo, publisher)

	account, err := service.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if account.ID != 7 {
		t.Fatalf("expected storage-assigned ID 7, got %d", account.ID)
	}
	if repo.insertCalls != 1 {
		t.Fatalf("expected one insert, got %d", repo.insertCalls)
	}

	draft := repo.insertedAt[0]
	if draft.PasswordHash == "Str0ng!Pass" || draft.PasswordHash == "" {
		t.Fatal("expected the stored hash to differ from the plaintext password")
	}
	if !security.VerifyPassword("Str0ng!Pass", draft.PasswordHash) {
		t.Fatal("expected the stored hash to verify against the original password")
	}

	if len(publisher.registered) != 1 {
		t.Fatalf("expected one registered event, got %d", len(publisher.registered))
	}
	if publisher.registered[0].AccountID != 7 {
		t.Fatalf("expected event account ID 7, got %d", publisher.registered[0].AccountID)
	}
}

func TestRegisterRejectsInvalidInputBeforeStorage(t *testing.T) {
	cases := []struct {
		name  string
		input RegistrationInput
		field string
	}{
		{"short username", RegistrationInput{Username: "ab", Email: "a@example.com", Password: "Str0ng!Pass"}, "username"},
		{"long username", RegistrationInput{Username: strings.Repeat("a", 51), Email: "a@example.com", Password: "Str0ng!Pass"}, "username"},
		{"username charset", RegistrationInput{Username: "bad name!", Email: "a@example.com", Password: "Str0ng!Pass"}, "username"},
		{"invalid email", RegistrationInput{Username: "charles_a", Email: "not-an-email", Password: "Str0ng!Pass"}, "email"},
		{"long email", RegistrationInput{Username: "charles_a", Email: strings.Repeat("a", 95) + "@ex.com", Password: "Str0ng!Pass"}, "email"},
		{"weak password", RegistrationInput{Username: "charles_a", Email: "a@example.com", Password: "password"}, "password"},
		{"short password", RegistrationInput{Username: "charles_a", Email: "a@example.com", Password: "Sh0rt!"}, "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeAccountRepo{}
			publisher := &fakePublisher{}
			service := newRegistrationService(t, repo, publisher)

			_, err := service.Register(context.Background(), tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if validationErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, validationErr.Field)
			}

			if repo.insertCalls != 0 {
				t.Fatalf("expected no inserts for invalid input, got %d", repo.insertCalls)
			}
			if len(publisher.registered) != 0 {
				t.Fatal("expected no events for invalid input")
			}
		})
	}
}

func TestRegisterPropagatesConflict(t *testing.T) {
	repo := &fakeAccountRepo{insertErr: &repository.ConflictError{Field: "email"}}
	publisher := &fakePublisher{}
	service := newRegistrationService(t, repo, publisher)

	_, err := service.Register(context.Background(), validRegistration())
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(publisher.registered) != 0 {
		t.Fatal("expected no events for a conflicting registration")
	}
}

func TestRegisterSucceedsWhenPublishFails(t *testing.T) {
	repo := &fakeAccountRepo{}
	publisher := &fakePublisher{publishErr: errors.New("broker down")}
	service := newRegistrationService(t, repo, publisher)

	account, err := service.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("expected registration to succeed despite publish failure, got %v", err)
	}
	if account == nil {
		t.Fatal("expected account")
	}
}

func TestRegisterBoundaryUsernameLengths(t *testing.T) {
	for _, username := range []string{"abc", strings.Repeat("a", 50)} {
		repo := &fakeAccountRepo{}
		service := newRegistrationService(t, repo, &fakePublisher{})

		input := validRegistration()
		input.Username = username
		if _, err := service.Register(context.Background(), input); err != nil {
			t.Fatalf("expected %d character username to pass, got %v", len(username), err)
		}
	}
}
