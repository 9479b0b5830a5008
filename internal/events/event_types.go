package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/etutor-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccessDenied         EventType = "access_denied"
	EventUserRegistered       EventType = "user_registered"
	EventUserStatusChanged    EventType = "user_status_changed"
	EventAppointmentBooked    EventType = "appointment_booked"
	EventAppointmentCancelled EventType = "appointment_cancelled"
)

// AuditedTypes lists every event type forwarded to the audit log.
var AuditedTypes = []EventType{
	EventAccessDenied,
	EventUserRegistered,
	EventUserStatusChanged,
	EventAppointmentBooked,
	EventAppointmentCancelled,
}

// Actor encapsulates actor metadata for an event. Both fields are empty for
// anonymous callers.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFrom builds an Actor from a resolved user, tolerating nil.
func ActorFrom(user *domain.User) Actor {
	if user == nil {
		return Actor{}
	}
	return Actor{UserID: user.ID, Role: user.Role}
}

// Event represents a domain event emitted by the gate and services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID string      `json:"resource_id,omitempty"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, resourceID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ResourceID: resourceID,
		Actor:      actor,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// AccessDeniedPayload describes a rejected request.
type AccessDeniedPayload struct {
	Stage     string `json:"stage"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	IP        string `json:"ip"`
	RequestID string `json:"request_id,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// UserStatusChangedPayload payload.
type UserStatusChangedPayload struct {
	Active bool `json:"active"`
}

// AppointmentPayload payload for booking and cancellation.
type AppointmentPayload struct {
	StudentID string    `json:"student_id"`
	TutorID   string    `json:"tutor_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}
