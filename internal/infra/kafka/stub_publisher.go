package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/core/port"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	fields = append([]zap.Field{
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
	}, fields...)

	p.logger.Info("stub event published", fields...)
}

// PublishAccountRegistered logs auth.account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.logEvent("auth.account.registered", event.RegisteredAt,
		zap.Int64("account_id", event.AccountID),
		zap.String("username", event.Username),
		zap.String("email", logger.MaskEmail(event.Email)),
	)
	return nil
}

// PublishLoginAttempt logs auth.login.attempt events.
func (p *StubPublisher) PublishLoginAttempt(_ context.Context, event domain.LoginAttemptEvent) error {
	p.logEvent("auth.login.attempt", event.AttemptedAt,
		zap.Int64("account_id", event.AccountID),
		zap.String("email", logger.MaskEmail(event.Email)),
		zap.Bool("succeeded", event.Succeeded),
		zap.String("failure_kind", string(event.FailureKind)),
	)
	return nil
}

// PublishStartupValidated logs auth.startup.validated events.
func (p *StubPublisher) PublishStartupValidated(_ context.Context, event domain.StartupValidatedEvent) error {
	p.logEvent("auth.startup.validated", event.CheckedAt,
		zap.Bool("passed", event.Passed),
		zap.Strings("problems", event.Problems),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
