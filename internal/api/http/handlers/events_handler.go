package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dialog-engine/internal/api/dto"
	"github.com/spec-kit/dialog-engine/internal/repository"
	apperrors "github.com/spec-kit/dialog-engine/pkg/util/errorutil"
)

// EventsHandler exposes the per-user event log to operators.
type EventsHandler struct {
	events repository.EventRepository
}

// NewEventsHandler constructs handler.
func NewEventsHandler(events repository.EventRepository) *EventsHandler {
	return &EventsHandler{events: events}
}

// ListUserEvents GET /users/:user_id/events.
func (h *EventsHandler) ListUserEvents(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	limit := parseInt(c.Query("limit"), 100)

	records, err := h.events.ListByUser(c.UserContext(), userID, limit)
	if err != nil {
		return err
	}
	items := make([]dto.EventResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.EventResponse{
			ID:        record.ID,
			Type:      string(record.Type),
			Payload:   record.Payload,
			Timestamp: record.Timestamp,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
