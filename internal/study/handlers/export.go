package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"simvex/internal/common/metrics"
	"simvex/internal/common/middleware"
	"simvex/internal/export"
	"simvex/internal/viewer"
)

const maxSnapshotBytes = 16 << 20

// ============================================================
// Export Handler
// ============================================================

type ExportHandler struct {
	ctrl     *viewer.Controller
	renderer *export.Renderer
	archive  *export.Archive
	log      *zap.Logger
	now      func() time.Time
}

// NewExportHandler builds the handler. archive may be nil.
func NewExportHandler(ctrl *viewer.Controller, renderer *export.Renderer, archive *export.Archive, log *zap.Logger) *ExportHandler {
	return &ExportHandler{
		ctrl:     ctrl,
		renderer: renderer,
		archive:  archive,
		log:      log.Named("export"),
		now:      time.Now,
	}
}

// Export renders the persisted note, with an optional "snapshot" image of
// the 3D view, and returns it as a PDF attachment.
func (h *ExportHandler) Export(c fiber.Ctx) error {
	owner := middleware.OwnerID(c)
	view, err := h.ctrl.Load(c.Context(), owner, c.Params("id"))
	if err != nil {
		return fail(c, h.log, err)
	}

	var snapshot []byte
	if fileHeader, err := c.FormFile("snapshot"); err == nil {
		if fileHeader.Size > maxSnapshotBytes {
			return badRequest(c, "snapshot too large")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return badRequest(c, "failed to open snapshot")
		}
		defer file.Close()
		if snapshot, err = io.ReadAll(file); err != nil {
			return badRequest(c, "failed to read snapshot")
		}
	}

	now := h.now()
	data, err := h.renderer.RenderBytes(export.Note{
		AssemblyName: view.Name,
		Text:         view.State.Note,
		Snapshot:     snapshot,
		CreatedAt:    now,
	})
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return fail(c, h.log, err)
	}
	metrics.ExportsTotal.WithLabelValues("success").Inc()

	filename := export.Filename(view.Name, now)
	if h.archive != nil {
		if _, err := h.archive.Save(owner, filename, data); err != nil {
			h.log.Warn("archive export failed", zap.String("owner", owner), zap.Error(err))
		}
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Status(http.StatusOK).Send(data)
}

// List returns the caller's archived exports.
func (h *ExportHandler) List(c fiber.Ctx) error {
	if h.archive == nil {
		return c.JSON(fiber.Map{"exports": []string{}})
	}
	return c.JSON(fiber.Map{"exports": h.archive.List(middleware.OwnerID(c))})
}
