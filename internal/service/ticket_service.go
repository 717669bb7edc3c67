package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticketdesk/internal/cache"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util"
)

// TicketService coordinates the ticket lifecycle for authenticated owners.
type TicketService struct {
	tickets    repository.TicketRepository
	views      *cache.ViewCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	ViewCache  *cache.ViewCache
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		views:      deps.ViewCache,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a new ticket owned by the caller and invalidates the
// owner's list view.
func (s *TicketService) CreateTicket(ctx context.Context, ownerID int64, title, description string) (*domain.Ticket, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	ticket := &domain.Ticket{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.views.InvalidateTicketList(ctx, ownerID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		UserID:   ownerID,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{Title: ticket.Title},
	})
	return ticket, nil
}

// ListTickets returns the caller's tickets, newest first.
func (s *TicketService) ListTickets(ctx context.Context, ownerID int64) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket. A ticket owned by someone else is
// indistinguishable from a missing one.
func (s *TicketService) GetTicket(ctx context.Context, ownerID, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByOwner(ctx, ticketID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// CloseTicket performs the one-way OPEN to CLOSED transition. Re-closing
// fails; the write is a conditional update, so a concurrent closer losing the
// race gets the same failure as a re-close.
func (s *TicketService) CloseTicket(ctx context.Context, ownerID, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ownerID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewAlreadyClosed()
	}

	now := time.Now()
	closed, err := s.tickets.Close(ctx, ticketID, ownerID, now)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !closed {
		return nil, apperrors.NewAlreadyClosed()
	}

	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now

	s.views.InvalidateTicketList(ctx, ownerID)
	s.views.InvalidateTicket(ctx, ownerID, ticketID)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		UserID:   ownerID,
		TicketID: ticket.ID,
		Payload:  events.TicketClosedPayload{ClosedAt: now},
	})
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
