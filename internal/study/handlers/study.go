package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"simvex/internal/common/middleware"
	"simvex/internal/viewer"
)

// ============================================================
// Study Handler
// ============================================================

type StudyHandler struct {
	ctrl *viewer.Controller
	log  *zap.Logger
}

func NewStudyHandler(ctrl *viewer.Controller, log *zap.Logger) *StudyHandler {
	return &StudyHandler{ctrl: ctrl, log: log.Named("study")}
}

type explosionRequest struct {
	Value *float64 `json:"value"`
}

type selectionRequest struct {
	PartID *string `json:"partId"`
}

type focusRequest struct {
	PartID   string `json:"partId"`
	ModelRef string `json:"modelRef"`
}

type transformRequest struct {
	Position *viewer.Vec3 `json:"position"`
	Rotation *viewer.Vec3 `json:"rotation"`
}

type groupRequest struct {
	ModelRef string `json:"modelRef"`
}

type noteRequest struct {
	Note *string `json:"note"`
}

type appendRequest struct {
	Text string `json:"text"`
}

type layoutRequest struct {
	ActiveTab    *viewer.Tab `json:"activeTab"`
	SidebarWidth *float64    `json:"sidebarWidth"`
}

// Load returns the persisted state and the display transform of every part.
func (h *StudyHandler) Load(c fiber.Ctx) error {
	view, err := h.ctrl.Load(c.Context(), middleware.OwnerID(c), c.Params("id"))
	return h.respond(c, view, err)
}

func (h *StudyHandler) SetExplosion(c fiber.Ctx) error {
	var req explosionRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Value == nil {
		return badRequest(c, "value required")
	}
	view, err := h.ctrl.SetExplosion(c.Context(), middleware.OwnerID(c), c.Params("id"), *req.Value)
	return h.respond(c, view, err)
}

// SelectPart selects a part; a null or empty partId deselects.
func (h *StudyHandler) SelectPart(c fiber.Ctx) error {
	var req selectionRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	partID := ""
	if req.PartID != nil {
		partID = *req.PartID
	}
	view, err := h.ctrl.SelectPart(c.Context(), middleware.OwnerID(c), c.Params("id"), partID)
	return h.respond(c, view, err)
}

// Focus selects a part and returns the camera animation to play.
func (h *StudyHandler) Focus(c fiber.Ctx) error {
	var req focusRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	view, focus, err := h.ctrl.Focus(c.Context(), middleware.OwnerID(c), c.Params("id"), req.PartID, req.ModelRef)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"view": view, "focus": focus})
}

// SetTransform stores the pose at the end of a gizmo drag.
func (h *StudyHandler) SetTransform(c fiber.Ctx) error {
	var req transformRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Position == nil || req.Rotation == nil {
		return badRequest(c, "position and rotation required")
	}
	view, err := h.ctrl.SetManualTransform(c.Context(), middleware.OwnerID(c), c.Params("id"), c.Params("partId"), *req.Position, *req.Rotation)
	return h.respond(c, view, err)
}

func (h *StudyHandler) ToggleVisibility(c fiber.Ctx) error {
	var req groupRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	view, err := h.ctrl.ToggleGroupVisibility(c.Context(), middleware.OwnerID(c), c.Params("id"), req.ModelRef)
	return h.respond(c, view, err)
}

func (h *StudyHandler) ToggleChecked(c fiber.Ctx) error {
	var req groupRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	view, err := h.ctrl.ToggleGroupChecked(c.Context(), middleware.OwnerID(c), c.Params("id"), req.ModelRef)
	return h.respond(c, view, err)
}

func (h *StudyHandler) SetNote(c fiber.Ctx) error {
	var req noteRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Note == nil {
		return badRequest(c, "note required")
	}
	view, err := h.ctrl.SetNote(c.Context(), middleware.OwnerID(c), c.Params("id"), *req.Note)
	return h.respond(c, view, err)
}

// AppendNote copies selected text into the note.
func (h *StudyHandler) AppendNote(c fiber.Ctx) error {
	var req appendRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	view, err := h.ctrl.AppendToNote(c.Context(), middleware.OwnerID(c), c.Params("id"), req.Text)
	return h.respond(c, view, err)
}

func (h *StudyHandler) SetLayout(c fiber.Ctx) error {
	var req layoutRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	view, err := h.ctrl.Layout(c.Context(), middleware.OwnerID(c), c.Params("id"), req.ActiveTab, req.SidebarWidth)
	return h.respond(c, view, err)
}

// Reset clears everything stored for the assembly. It needs ?confirm=true.
func (h *StudyHandler) Reset(c fiber.Ctx) error {
	confirmed := c.Query("confirm") == "true"
	view, err := h.ctrl.ResetAll(c.Context(), middleware.OwnerID(c), c.Params("id"), confirmed)
	return h.respond(c, view, err)
}

// ============================================================
// Camera
// ============================================================

func (h *StudyHandler) Camera(c fiber.Ctx) error {
	cam, err := h.ctrl.Camera(c.Context(), middleware.OwnerID(c), c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(cam)
}

// SaveCamera accepts the pose after an orbit change. The write is debounced,
// so the response only acknowledges it.
func (h *StudyHandler) SaveCamera(c fiber.Ctx) error {
	var req struct {
		Position *viewer.Vec3 `json:"position"`
		Target   *viewer.Vec3 `json:"target"`
	}
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Position == nil || req.Target == nil {
		return badRequest(c, "position and target required")
	}
	h.ctrl.UpdateCamera(middleware.OwnerID(c), c.Params("id"), viewer.CameraState{
		Position: *req.Position,
		Target:   *req.Target,
	})
	return c.SendStatus(http.StatusAccepted)
}

func (h *StudyHandler) respond(c fiber.Ctx, view viewer.View, err error) error {
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(view)
}
