package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The only transition
// is OPEN to CLOSED; CLOSED is terminal.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	ClosedAt    *time.Time
}
