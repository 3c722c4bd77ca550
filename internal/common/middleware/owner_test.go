package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens map[string]string

func (s staticTokens) Resolve(token string) (string, bool) {
	id, ok := s[token]
	return id, ok
}

func TestOwner(t *testing.T) {
	app := fiber.New()
	app.Use(Owner(staticTokens{"good": "42"}))
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(OwnerID(c))
	})

	tests := []struct {
		name   string
		auth   string
		client string
		want   string
	}{
		{"nothing", "", "", AnonymousOwner},
		{"client id", "", "tab-1", "client:tab-1"},
		{"token wins", "Bearer good", "tab-1", "user:42"},
		{"unknown token falls back", "Bearer bad", "tab-1", "client:tab-1"},
		{"not bearer", "Basic good", "", AnonymousOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.client != "" {
				req.Header.Set("X-Client-ID", tt.client)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
