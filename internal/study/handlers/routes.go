package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// Handlers groups everything the study API serves.
type Handlers struct {
	Catalog   *CatalogHandler
	Study     *StudyHandler
	Assistant *AssistantHandler
	Export    *ExportHandler
}

// Register mounts the study API under /api.
func (h *Handlers) Register(router fiber.Router) {
	api := router.Group("/api")

	api.Get("/catalog", h.Catalog.List)
	api.Get("/catalog/:id", h.Catalog.Get)
	api.Get("/favorites", h.Catalog.Favorites)
	api.Post("/favorites/:id", h.Catalog.ToggleFavorite)

	api.Get("/study/:id", h.Study.Load)
	api.Delete("/study/:id", h.Study.Reset)

	study := api.Group("/study/:id")
	study.Put("/explosion", h.Study.SetExplosion)
	study.Put("/selection", h.Study.SelectPart)
	study.Post("/focus", h.Study.Focus)
	study.Put("/parts/:partId/transform", h.Study.SetTransform)
	study.Post("/groups/visibility", h.Study.ToggleVisibility)
	study.Post("/groups/checked", h.Study.ToggleChecked)
	study.Put("/note", h.Study.SetNote)
	study.Post("/note/append", h.Study.AppendNote)
	study.Put("/layout", h.Study.SetLayout)
	study.Get("/camera", h.Study.Camera)
	study.Put("/camera", h.Study.SaveCamera)
	study.Post("/chat", h.Assistant.Chat)
	study.Post("/export", h.Export.Export)

	api.Get("/exports", h.Export.List)
	api.Post("/ai/ask", h.Assistant.Ask)
}
