package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dialog-engine/internal/api/dto"
	"github.com/spec-kit/dialog-engine/internal/domain"
	"github.com/spec-kit/dialog-engine/internal/engine"
	"github.com/spec-kit/dialog-engine/internal/observability"
	apperrors "github.com/spec-kit/dialog-engine/pkg/util/errorutil"
)

// MessagesHandler is the channel-facing ingress: one POST per delivered user
// message, one response per turn.
type MessagesHandler struct {
	engine  *engine.Engine
	metrics *observability.Metrics
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(eng *engine.Engine, metrics *observability.Metrics) *MessagesHandler {
	return &MessagesHandler{engine: eng, metrics: metrics}
}

// HandleMessage POST /messages.
func (h *MessagesHandler) HandleMessage(c *fiber.Ctx) error {
	var req dto.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("user_id and text required", nil)
	}

	utterance := domain.Utterance{
		UserID:    req.UserID,
		Text:      req.Text,
		Timestamp: time.Now(),
	}
	if req.Timestamp != nil {
		utterance.Timestamp = *req.Timestamp
	}

	response, err := h.engine.HandleUtterance(c.UserContext(), utterance)
	if err != nil {
		return err
	}

	h.metrics.RecordTurn(string(response.Stage), response.Escalated)
	return c.JSON(fiber.Map{"data": dto.MessageResponse{
		Text:      response.Text,
		Stage:     response.Stage,
		Intent:    response.Intent.Name,
		TicketID:  response.TicketID,
		Escalated: response.Escalated,
		Duplicate: response.Duplicate,
	}})
}

// ResetConversation DELETE /conversations/:user_id.
func (h *MessagesHandler) ResetConversation(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	if err := h.engine.Reset(c.UserContext(), userID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user_id": userID, "reset": true}})
}
