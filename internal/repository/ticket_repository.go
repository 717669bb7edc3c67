package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// TicketRepository encapsulates ticket persistence. All reads are scoped to
// the owner, so a ticket belonging to someone else behaves exactly like a
// missing one.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByOwner(ctx context.Context, id, ownerID int64) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error)
	Close(ctx context.Context, id, ownerID int64, closedAt time.Time) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (owner_id, title, description, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByOwner(ctx context.Context, id, ownerID int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, owner_id, title, description, status, created_at, closed_at
        FROM tickets WHERE id=$1 AND owner_id=$2`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error) {
	const query = `
        SELECT id, owner_id, title, description, status, created_at, closed_at
        FROM tickets WHERE owner_id=$1
        ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// Close performs the OPEN to CLOSED transition as a single conditional
// update. It returns false when no open row matched, which covers both a
// ticket already closed and a concurrent closer winning the race.
func (r *ticketRepository) Close(ctx context.Context, id, ownerID int64, closedAt time.Time) (bool, error) {
	const query = `
        UPDATE tickets SET status=$1, closed_at=$2
        WHERE id=$3 AND owner_id=$4 AND status=$5`
	cmd, err := r.pool.Exec(ctx, query,
		domain.TicketStatusClosed,
		closedAt,
		id,
		ownerID,
		domain.TicketStatusOpen,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.OwnerID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
