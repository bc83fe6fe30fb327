package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/chat-registration/internal/domain"
	"github.com/spec-kit/chat-registration/internal/events"
	"github.com/spec-kit/chat-registration/internal/repository"
)

// EventPublisher forwards serialized events to an external channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService records and fans out registration events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	ledger     repository.RegistrationLogRepository
	publisher  EventPublisher
	channel    string
	timeout    time.Duration
}

// DefaultSinkTimeout bounds sink delivery when no timeout is configured.
const DefaultSinkTimeout = 500 * time.Millisecond

// NotificationDependencies encapsulates optional sinks. Nil sinks are skipped.
// Timeout caps the time both sinks together may spend on one event.
type NotificationDependencies struct {
	Ledger    repository.RegistrationLogRepository
	Publisher EventPublisher
	Channel   string
	Timeout   time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, deps NotificationDependencies) *NotificationService {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = DefaultSinkTimeout
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		ledger:     deps.Ledger,
		publisher:  deps.Publisher,
		channel:    deps.Channel,
		timeout:    timeout,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRegistrationCompleted, n.handleRegistrationCompleted)
	n.dispatcher.Subscribe(events.EventRegistrationFailed, n.handleRegistrationFailed)
}

func (n *NotificationService) handleRegistrationCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegistrationCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("RegistrationCompleted",
		zap.String("customer_id", event.CustomerID),
		zap.String("channel_id", payload.ChannelID))

	entry := &repository.RegistrationLogEntry{
		EventID:    event.ID,
		RequestID:  event.RequestID,
		CustomerID: event.CustomerID,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Status:     domain.RegistrationStatusCompleted,
	}
	return n.deliver(ctx, event, entry)
}

func (n *NotificationService) handleRegistrationFailed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegistrationFailedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	// Steps before the failed one stay committed; this line is what
	// reconciliation works from.
	n.logger.Warn("RegistrationFailed",
		zap.String("customer_id", event.CustomerID),
		zap.String("failed_step", string(payload.FailedStep)),
		zap.String("error", payload.Error))

	step := payload.FailedStep
	errMsg := payload.Error
	entry := &repository.RegistrationLogEntry{
		EventID:    event.ID,
		RequestID:  event.RequestID,
		CustomerID: event.CustomerID,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Status:     domain.RegistrationStatusFailed,
		FailedStep: &step,
		Error:      &errMsg,
	}
	return n.deliver(ctx, event, entry)
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event, entry *repository.RegistrationLogEntry) error {
	// Sinks run on the request path with their own deadline, detached from the caller's.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	var firstErr error
	if n.ledger != nil {
		if err := n.ledger.Create(ctx, entry); err != nil {
			firstErr = fmt.Errorf("record registration: %w", err)
		}
	}

	if n.publisher != nil && n.channel != "" {
		body, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		if err := n.publisher.Publish(ctx, n.channel, body); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("publish event: %w", err)
		}
	}
	return firstErr
}
