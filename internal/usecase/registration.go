package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/core/port"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/logger"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/security"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/telemetry"
	"github.com/CharlesTPAquino/RegistroMM/internal/repository"
)

// RegistrationInput carries the raw fields of a registration request.
type RegistrationInput struct {
	Username string
	Email    string
	Password string
}

// RegistrationService validates registration input, hashes the password and
// stores the resulting account.
type RegistrationService struct {
	repo      port.AccountRepository
	publisher port.EventPublisher
	passwords *security.PasswordValidator
	metrics   *telemetry.Provider
	logger    *zap.Logger
	hash      func(password string) (string, error)
}

func NewRegistrationService(
	repo port.AccountRepository,
	publisher port.EventPublisher,
	passwords *security.PasswordValidator,
	metrics *telemetry.Provider,
	log *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		repo:      repo,
		publisher: publisher,
		passwords: passwords,
		metrics:   metrics,
		logger:    log,
		hash:      security.HashPassword,
	}
}

// Register runs the full registration workflow. Input is validated before any
// hashing or storage work happens; a rejected field short-circuits without
// touching the repository. Uniqueness is left entirely to the storage layer,
// so concurrent registrations of the same identity resolve to exactly one
// created account and a ConflictError for the rest.
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput) (*domain.Account, error) {
	if err := validateUsername(input.Username); err != nil {
		s.metrics.ObserveRegistration("rejected_input")
		return nil, err
	}
	if err := validateEmail(input.Email); err != nil {
		s.metrics.ObserveRegistration("rejected_input")
		return nil, err
	}
	if err := validatePassword(s.passwords, input.Password); err != nil {
		s.metrics.ObserveRegistration("rejected_input")
		return nil, err
	}

	encoded, err := s.hash(input.Password)
	if err != nil {
		s.metrics.ObserveRegistration("internal_error")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.repo.InsertUnique(ctx, domain.AccountDraft{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: encoded,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.ObserveRegistration("conflict")
			return nil, err
		}
		s.metrics.ObserveRegistration("internal_error")
		return nil, fmt.Errorf("store account: %w", err)
	}

	s.metrics.ObserveRegistration("created")
	s.logger.Info("account registered",
		zap.Int64("account_id", account.ID),
		zap.String("username", account.Username),
		zap.String("email", logger.MaskEmail(account.Email)),
	)

	s.publishRegistered(ctx, account)
	return account, nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, account *domain.Account) {
	if s.publisher == nil {
		return
	}
	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Username:     account.Username,
		Email:        account.Email,
		RegisteredAt: account.CreatedAt,
	}
	if err := s.publisher.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered event failed", zap.Error(err))
	}
}
