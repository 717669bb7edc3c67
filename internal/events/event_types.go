package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventLoginFailed    EventType = "login_failed"
	EventTicketCreated  EventType = "ticket_created"
	EventTicketClosed   EventType = "ticket_closed"
)

// Event represents a domain event emitted by services. Purely observational;
// subscribers record breadcrumbs and forward to the telemetry sink.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    int64       `json:"user_id,omitempty"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
}

// LoginFailedPayload payload. Email is deliberately omitted so the sink
// cannot be used for enumeration either.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title string `json:"title"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ClosedAt time.Time `json:"closed_at"`
}
