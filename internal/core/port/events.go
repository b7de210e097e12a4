package port

import (
	"context"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus. Publish failures
// must never change the outcome of the workflow that emitted the event.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishLoginAttempt(ctx context.Context, event domain.LoginAttemptEvent) error
	PublishStartupValidated(ctx context.Context, event domain.StartupValidatedEvent) error
}
