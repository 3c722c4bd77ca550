package handlers

import (
	"net/http"
	"slices"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"simvex/internal/catalog"
	"simvex/internal/common/middleware"
	"simvex/internal/viewer"
)

// ============================================================
// Catalog Handler
// ============================================================

type CatalogHandler struct {
	catalog *catalog.Catalog
	ctrl    *viewer.Controller
	log     *zap.Logger
}

func NewCatalogHandler(cat *catalog.Catalog, ctrl *viewer.Controller, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cat, ctrl: ctrl, log: log.Named("catalog")}
}

type assemblySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category"`
	Thumbnail   string `json:"thumbnail"`
	PartCount   int    `json:"partCount"`
	Favorite    bool   `json:"favorite"`
}

// List returns the assemblies matching ?search=, marked with the caller's
// favorites.
func (h *CatalogHandler) List(c fiber.Ctx) error {
	favorites, err := h.ctrl.Favorites(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return fail(c, h.log, err)
	}

	out := []assemblySummary{}
	for _, a := range h.catalog.Search(c.Query("search")) {
		out = append(out, assemblySummary{
			ID:          a.ID,
			Name:        a.Name,
			DisplayName: a.DisplayName,
			Category:    a.Category,
			Thumbnail:   a.Thumbnail,
			PartCount:   len(a.Parts),
			Favorite:    slices.Contains(favorites, a.ID),
		})
	}
	return c.JSON(out)
}

// Get returns one assembly with its parts and groups. Unknown ids resolve to
// the default assembly, as the viewer does.
func (h *CatalogHandler) Get(c fiber.Ctx) error {
	a := h.catalog.Lookup(c.Params("id"))

	groups := []fiber.Map{}
	for _, g := range a.Groups() {
		groups = append(groups, fiber.Map{
			"modelRef": g.ModelRef,
			"name":     viewer.ModelName(g.ModelRef),
			"partIds":  g.PartIDs,
		})
	}
	return c.JSON(fiber.Map{
		"assembly": a,
		"groups":   groups,
	})
}

// Favorites lists the caller's favorite assembly ids.
func (h *CatalogHandler) Favorites(c fiber.Ctx) error {
	ids, err := h.ctrl.Favorites(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"favorites": ids})
}

// ToggleFavorite adds or removes one assembly.
func (h *CatalogHandler) ToggleFavorite(c fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.catalog.Get(id); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "assembly not found"})
	}
	ids, err := h.ctrl.ToggleFavorite(c.Context(), middleware.OwnerID(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"favorites": ids,
		"favorite":  slices.Contains(ids, id),
	})
}
