package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"simvex/internal/assistant"
	"simvex/internal/catalog"
	"simvex/internal/export"
	"simvex/internal/viewer"
)

// status maps domain errors onto HTTP codes.
func status(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, viewer.ErrUnknownPart),
		errors.Is(err, viewer.ErrUnknownGroup):
		return http.StatusNotFound
	case errors.Is(err, viewer.ErrNotSelected):
		return http.StatusConflict
	case errors.Is(err, viewer.ErrInvalidTab),
		errors.Is(err, viewer.ErrEmptyQuestion),
		errors.Is(err, viewer.ErrNotConfirmed),
		errors.Is(err, viewer.ErrUnknownFocus),
		errors.Is(err, export.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, viewer.ErrAssistant):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c fiber.Ctx, log *zap.Logger, err error) error {
	code := status(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		if code == http.StatusInternalServerError {
			return c.Status(code).JSON(fiber.Map{"error": "internal error"})
		}
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return errors.New("invalid json")
	}
	return nil
}
