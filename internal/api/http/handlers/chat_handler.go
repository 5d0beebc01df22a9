package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ecocampus/complaint-service/internal/ai"
	"github.com/ecocampus/complaint-service/internal/api/dto"
	"github.com/ecocampus/complaint-service/internal/auth"
	"github.com/ecocampus/complaint-service/internal/chat"
	"github.com/ecocampus/complaint-service/internal/service"
	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

// chatContextLimit caps how many of the user's complaints are fed to the
// model as conversation context.
const chatContextLimit = 10

// ChatHandler serves the waste-assistant conversation endpoint.
type ChatHandler struct {
	engine     *chat.Engine
	complaints *service.ComplaintService
}

// NewChatHandler constructs handler.
func NewChatHandler(engine *chat.Engine, complaints *service.ComplaintService) *ChatHandler {
	return &ChatHandler{engine: engine, complaints: complaints}
}

// Chat POST /chat.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewValidationError("message required", nil)
	}

	contextComplaints, err := h.complaints.ListByOwner(c.Context(), principal.User.ID, chatContextLimit, 0)
	if err != nil {
		return err
	}

	turn, err := h.engine.Respond(c.Context(), principal.User.ID, ai.ChatRequest{
		History:           req.ToAIHistory(),
		Message:           req.Message,
		Language:          req.Language,
		ContextComplaints: contextComplaints,
	})
	if err != nil {
		return apperrors.NewDomainError("AI_UNAVAILABLE", "assistant unavailable", fiber.StatusServiceUnavailable, nil)
	}
	return c.JSON(fiber.Map{"data": dto.ChatResponse{Reply: turn.Reply, ToolExecuted: turn.ToolExecuted}})
}
