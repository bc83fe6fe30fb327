package events

import (
	"time"

	"github.com/spec-kit/chat-registration/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRegistrationCompleted EventType = "registration_completed"
	EventRegistrationFailed    EventType = "registration_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	CustomerID string      `json:"customer_id"`
	RequestID  string      `json:"request_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// RegistrationCompletedPayload payload.
type RegistrationCompletedPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ChannelID string `json:"channel_id"`
	SupportID string `json:"support_id"`
}

// RegistrationFailedPayload payload. Steps before FailedStep were committed
// and are not rolled back.
type RegistrationFailedPayload struct {
	FirstName  string                  `json:"first_name"`
	LastName   string                  `json:"last_name"`
	FailedStep domain.RegistrationStep `json:"failed_step"`
	Error      string                  `json:"error"`
}
