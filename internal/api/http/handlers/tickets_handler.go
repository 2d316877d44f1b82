package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dialog-engine/internal/api/dto"
	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/engine"
	"github.com/spec-kit/dialog-engine/internal/handoff"
	"github.com/spec-kit/dialog-engine/internal/repository"
	apperrors "github.com/spec-kit/dialog-engine/pkg/util/errorutil"
)

// TicketsHandler manages the operator ticket surface.
type TicketsHandler struct {
	tickets repository.TicketRepository
	manager *handoff.TicketManager
	engine  *engine.Engine
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets repository.TicketRepository, manager *handoff.TicketManager, eng *engine.Engine) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, manager: manager, engine: eng}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TicketDetailResponse{
		TicketSummary:   ticketSummary(ticket),
		RequestedAction: ticket.RequestedAction,
		Snapshot:        ticket.Snapshot,
	}})
}

// ExportTicket GET /tickets/:id/export returns the flat record handed to an
// external helpdesk.
func (h *TicketsHandler) ExportTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": ticket.Export()})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.manager.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}

	// A resolved ticket releases the handoff it caused; the user's next
	// message re-enters the funnel.
	if ticket.Status == domain.TicketStatusResolved {
		if err := h.engine.OnTicketResolved(c.UserContext(), ticket.UserID, ticket.ID); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if typeStr := c.Query("type"); typeStr != "" {
		for _, part := range strings.Split(typeStr, ",") {
			filter.Types = append(filter.Types, domain.TicketType(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		UserID:      ticket.UserID,
		Type:        ticket.Type,
		Priority:    ticket.Priority,
		Summary:     ticket.Summary,
		Status:      ticket.Status,
		SLADeadline: ticket.SLADeadline,
		CreatedAt:   ticket.CreatedAt,
		ResolvedAt:  ticket.ResolvedAt,
	}
}
