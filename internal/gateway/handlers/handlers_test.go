package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOpenAPISpecListsStudyRoutes(t *testing.T) {
	var doc struct {
		OpenAPI string         `yaml:"openapi"`
		Paths   map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(openAPISpec, &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	for _, p := range []string{
		"/api/catalog",
		"/api/study/{id}",
		"/api/study/{id}/explosion",
		"/api/study/{id}/camera",
		"/api/study/{id}/export",
		"/api/ai/ask",
		"/api/auth/login",
	} {
		assert.Contains(t, doc.Paths, p)
	}
}

func TestReadinessProbe(t *testing.T) {
	healthy := true
	app := fiber.New()
	app.Get("/ready", ReadinessProbe(func(fiber.Ctx) error {
		if !healthy {
			return errors.New("study service down")
		}
		return nil
	}))
	app.Get("/docs/openapi.yaml", SwaggerSpec)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	healthy = false
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/docs/openapi.yaml", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, openAPISpec, body)
}
