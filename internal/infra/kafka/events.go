package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/core/port"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/config"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes auth.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    int64     `json:"account_id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		AccountID:    event.AccountID,
		Username:     event.Username,
		Email:        logger.MaskEmail(event.Email),
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.account.registered", event.RegisteredAt, payload)
}

// PublishLoginAttempt publishes auth.login.attempt events.
func (p *EventPublisher) PublishLoginAttempt(ctx context.Context, event domain.LoginAttemptEvent) error {
	payload := struct {
		AccountID   int64     `json:"account_id,omitempty"`
		Email       string    `json:"email"`
		Succeeded   bool      `json:"succeeded"`
		FailureKind string    `json:"failure_kind,omitempty"`
		AttemptedAt time.Time `json:"attempted_at"`
	}{
		AccountID:   event.AccountID,
		Email:       logger.MaskEmail(event.Email),
		Succeeded:   event.Succeeded,
		FailureKind: string(event.FailureKind),
		AttemptedAt: event.AttemptedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.login.attempt", event.AttemptedAt, payload)
}

// PublishStartupValidated publishes auth.startup.validated events.
func (p *EventPublisher) PublishStartupValidated(ctx context.Context, event domain.StartupValidatedEvent) error {
	payload := struct {
		Passed    bool      `json:"passed"`
		Problems  []string  `json:"problems,omitempty"`
		CheckedAt time.Time `json:"checked_at"`
	}{
		Passed:    event.Passed,
		Problems:  event.Problems,
		CheckedAt: event.CheckedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "auth.startup.validated", event.CheckedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
