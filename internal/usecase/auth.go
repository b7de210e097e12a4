package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/core/port"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/logger"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/security"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/telemetry"
	"github.com/CharlesTPAquino/RegistroMM/internal/repository"
)

// ErrInvalidCredentials is returned when login fails for any credential
// reason. Unknown email and wrong password map to the same error so callers
// cannot tell which one occurred.
var ErrInvalidCredentials = errors.New("invalid credentials")

const dummyPassword = "timing-equalizer-reference"

// LoginInput carries the raw fields of a login request.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Account *domain.Account
	Token   string
}

// AuthService authenticates accounts and issues session tokens.
type AuthService struct {
	repo      port.AccountRepository
	publisher port.EventPublisher
	tokens    *security.TokenAuthority
	metrics   *telemetry.Provider
	logger    *zap.Logger
	verify    func(password, encoded string) bool
	now       func() time.Time

	// dummyHash is verified against when the account is unknown so the
	// unknown-email path performs the same argon2 work as a mismatch.
	dummyHash string
}

func NewAuthService(
	repo port.AccountRepository,
	publisher port.EventPublisher,
	tokens *security.TokenAuthority,
	metrics *telemetry.Provider,
	log *zap.Logger,
) (*AuthService, error) {
	dummy, err := security.HashPassword(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare reference hash: %w", err)
	}
	return &AuthService{
		repo:      repo,
		publisher: publisher,
		tokens:    tokens,
		metrics:   metrics,
		logger:    log,
		verify:    security.VerifyPassword,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Login authenticates the given credentials and returns a signed session
// token. All credential failures return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	now := s.now().UTC()

	account, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.verify(input.Password, s.dummyHash)
			s.recordFailure(ctx, input.Email, 0, domain.LoginFailureInvalidCredentials, now)
			return nil, ErrInvalidCredentials
		}
		s.recordFailure(ctx, input.Email, 0, domain.LoginFailureInternal, now)
		return nil, fmt.Errorf("look up account: %w", err)
	}

	if !s.verify(input.Password, account.PasswordHash) {
		s.recordFailure(ctx, input.Email, account.ID, domain.LoginFailureInvalidCredentials, now)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(strconv.FormatInt(account.ID, 10), now)
	if err != nil {
		s.recordFailure(ctx, input.Email, account.ID, domain.LoginFailureInternal, now)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.ObserveLogin("succeeded")
	s.logger.Info("login succeeded",
		zap.Int64("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
	)
	s.publishAttempt(ctx, domain.LoginAttemptEvent{
		EventID:     uuid.NewString(),
		AccountID:   account.ID,
		Email:       account.Email,
		Succeeded:   true,
		AttemptedAt: now,
	})

	return &LoginResult{Account: account, Token: token}, nil
}

// ValidateToken checks a session token and returns its claims.
func (s *AuthService) ValidateToken(token string) (*security.Claims, error) {
	return s.tokens.Validate(token, s.now().UTC())
}

// TokenLifetime reports how long issued tokens stay valid.
func (s *AuthService) TokenLifetime() time.Duration {
	return s.tokens.Lifetime()
}

func (s *AuthService) recordFailure(ctx context.Context, email string, accountID int64, kind domain.LoginFailureKind, at time.Time) {
	switch kind {
	case domain.LoginFailureInternal:
		s.metrics.ObserveLogin("internal_error")
	default:
		s.metrics.ObserveLogin("invalid_credentials")
	}
	s.logger.Info("login failed",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("reason", string(kind)),
	)
	s.publishAttempt(ctx, domain.LoginAttemptEvent{
		EventID:     uuid.NewString(),
		AccountID:   accountID,
		Email:       email,
		Succeeded:   false,
		FailureKind: kind,
		AttemptedAt: at,
	})
}

func (s *AuthService) publishAttempt(ctx context.Context, event domain.LoginAttemptEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLoginAttempt(ctx, event); err != nil {
		s.logger.Warn("publish login attempt event failed", zap.Error(err))
	}
}
