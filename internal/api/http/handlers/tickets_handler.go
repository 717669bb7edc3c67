package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/dto"
	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/cache"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/service"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util"
)

// TicketsHandler manages ticket endpoints. List and detail views are served
// from the view cache when it is warm; mutations invalidate it through the
// service layer.
type TicketsHandler struct {
	service *service.TicketService
	views   *cache.ViewCache
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, views *cache.ViewCache) *TicketsHandler {
	return &TicketsHandler{service: ticketService, views: views}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), user.ID, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	ctx := c.UserContext()
	if payload, hit := h.views.GetTicketList(ctx, user.ID); hit {
		return sendCachedJSON(c, payload)
	}

	tickets, err := h.service.ListTickets(ctx, user.ID)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}

	payload, err := json.Marshal(fiber.Map{"data": items})
	if err != nil {
		return apperrors.MapError(err)
	}
	h.views.SetTicketList(ctx, user.ID, payload)
	return sendCachedJSON(c, payload)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if payload, hit := h.views.GetTicket(ctx, user.ID, ticketID); hit {
		return sendCachedJSON(c, payload)
	}

	ticket, err := h.service.GetTicket(ctx, user.ID, ticketID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(fiber.Map{"data": ticketResponse(ticket)})
	if err != nil {
		return apperrors.MapError(err)
	}
	h.views.SetTicket(ctx, user.ID, ticketID, payload)
	return sendCachedJSON(c, payload)
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	ticket, err := h.service.CloseTicket(c.UserContext(), user.ID, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// parseTicketID folds a non-numeric id into the same not-found failure a
// missing row produces.
func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound("ticket")
	}
	return id, nil
}

func sendCachedJSON(c *fiber.Ctx, payload []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		CreatedAt:   ticket.CreatedAt,
		ClosedAt:    ticket.ClosedAt,
	}
}
