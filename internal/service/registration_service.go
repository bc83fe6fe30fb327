package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-registration/internal/config"
	"github.com/spec-kit/chat-registration/internal/domain"
	"github.com/spec-kit/chat-registration/internal/events"
	"github.com/spec-kit/chat-registration/internal/observability"
)

// ContactCreator creates CRM contacts.
type ContactCreator interface {
	CreateContact(ctx context.Context, props []domain.ContactProperty) error
}

// ChatPlatform provisions chat users, channels and tokens.
type ChatPlatform interface {
	UpsertUsers(ctx context.Context, users ...domain.ChatUser) error
	OpenChannel(ctx context.Context, channelType, channelID string, members []string, createdBy string) (*domain.Channel, error)
	CreateToken(userID string) (string, error)
}

// StepError records which registration step failed. Its message is the
// underlying error's message unchanged.
type StepError struct {
	Step domain.RegistrationStep
	Err  error
}

func (e *StepError) Error() string {
	return e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// RegistrationService runs the customer registration sequence.
type RegistrationService struct {
	crm            ContactCreator
	chat           ChatPlatform
	dispatcher     events.Dispatcher
	logger         *zap.Logger
	support        domain.SupportIdentity
	apiKey         string
	customProperty string
	customValue    string
}

// RegistrationDependencies encapsulates collaborators for the registration service.
type RegistrationDependencies struct {
	CRM        ContactCreator
	Chat       ChatPlatform
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewRegistrationService builds the service.
func NewRegistrationService(cfg config.Config, deps RegistrationDependencies) *RegistrationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	support := domain.SupportIdentity{ID: cfg.Support.UserID, Name: cfg.Support.UserName}
	if support.ID == "" {
		support = domain.DefaultSupportIdentity
	}
	return &RegistrationService{
		crm:            deps.CRM,
		chat:           deps.Chat,
		dispatcher:     deps.Dispatcher,
		logger:         logger,
		support:        support,
		apiKey:         cfg.Stream.APIKey,
		customProperty: cfg.HubSpot.CustomProperty,
		customValue:    cfg.HubSpot.CustomValue,
	}
}

// Support returns the admin identity channels are opened with.
func (s *RegistrationService) Support() domain.SupportIdentity {
	return s.support
}

// Register creates the CRM contact, provisions both chat users, opens the
// customer channel and mints the customer token, strictly in that order.
// The first failure aborts the rest; earlier side effects are kept.
func (s *RegistrationService) Register(ctx context.Context, req domain.RegistrationRequest) (*domain.RegistrationResult, error) {
	req = req.Normalize()
	customer := domain.NewCustomerUser(req.FirstName, req.LastName)
	supporter := s.support.User()

	log := s.logger.With(
		zap.String("customer_id", customer.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	props := domain.ContactProperties(req.FirstName, req.LastName, s.customProperty, s.customValue)
	if err := s.crm.CreateContact(ctx, props); err != nil {
		return nil, s.fail(ctx, req, customer.ID, domain.StepCreateContact, err)
	}
	log.Debug("crm contact created")

	if err := s.chat.UpsertUsers(ctx, customer, supporter); err != nil {
		return nil, s.fail(ctx, req, customer.ID, domain.StepUpsertUsers, err)
	}

	channel, err := s.chat.OpenChannel(ctx, domain.ChannelTypeMessaging, customer.ID,
		[]string{customer.ID, supporter.ID}, supporter.ID)
	if err != nil {
		return nil, s.fail(ctx, req, customer.ID, domain.StepOpenChannel, err)
	}

	token, err := s.chat.CreateToken(customer.ID)
	if err != nil {
		return nil, s.fail(ctx, req, customer.ID, domain.StepCreateToken, err)
	}

	result := &domain.RegistrationResult{
		CustomerID:    customer.ID,
		CustomerToken: token,
		ChannelID:     channel.ID,
		APIKey:        s.apiKey,
	}
	log.Info("customer registered", zap.String("channel_id", channel.ID))

	s.publish(ctx, events.EventRegistrationCompleted, customer.ID, events.RegistrationCompletedPayload{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ChannelID: channel.ID,
		SupportID: supporter.ID,
	})
	return result, nil
}

func (s *RegistrationService) fail(ctx context.Context, req domain.RegistrationRequest, customerID string, step domain.RegistrationStep, err error) error {
	s.publish(ctx, events.EventRegistrationFailed, customerID, events.RegistrationFailedPayload{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		FailedStep: step,
		Error:      err.Error(),
	})
	return &StepError{Step: step, Err: err}
}

func (s *RegistrationService) publish(ctx context.Context, eventType events.EventType, customerID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		CustomerID: customerID,
		RequestID:  observability.RequestIDFromContext(ctx),
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}
