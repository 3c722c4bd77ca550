package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"simvex/internal/assistant"
	"simvex/internal/common/middleware"
	"simvex/internal/viewer"
)

// ============================================================
// Assistant Handler
// ============================================================

type AssistantHandler struct {
	ctrl *viewer.Controller
	ai   assistant.Assistant
	log  *zap.Logger
}

func NewAssistantHandler(ctrl *viewer.Controller, ai assistant.Assistant, log *zap.Logger) *AssistantHandler {
	return &AssistantHandler{ctrl: ctrl, ai: ai, log: log.Named("assistant")}
}

// Chat asks about the current selection and records both messages in the
// assembly's chat history.
func (h *AssistantHandler) Chat(c fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	view, reply, err := h.ctrl.Ask(c.Context(), middleware.OwnerID(c), c.Params("id"), req.Text)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"view": view, "reply": reply})
}

// Ask is the stateless question endpoint: {question, currentPart} -> {answer}.
func (h *AssistantHandler) Ask(c fiber.Ctx) error {
	var req struct {
		Question    string `json:"question"`
		CurrentPart string `json:"currentPart"`
	}
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if strings.TrimSpace(req.Question) == "" {
		return badRequest(c, "question required")
	}

	answer, err := h.ai.Answer(c.Context(), assistant.Question{
		Part: req.CurrentPart,
		Text: strings.TrimSpace(req.Question),
	})
	if err != nil {
		return fail(c, h.log, fmt.Errorf("%w: %w", viewer.ErrAssistant, err))
	}
	return c.JSON(fiber.Map{"answer": answer})
}
