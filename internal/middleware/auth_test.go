package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"crisiswatch/internal/config"
)

func newTestApp(adminToken string) *fiber.App {
	cfg := &config.Config{AdminToken: adminToken}
	auth := NewAuthMiddleware(cfg)

	app := fiber.New()
	app.Get("/admin", auth.RequireAdmin, func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		adminToken string
		header     string
		wantStatus int
	}{
		{"no token configured allows all", "", "", fiber.StatusOK},
		{"valid token", "secret", "Bearer secret", fiber.StatusOK},
		{"missing header", "secret", "", fiber.StatusUnauthorized},
		{"wrong scheme", "secret", "Basic secret", fiber.StatusUnauthorized},
		{"wrong token", "secret", "Bearer nope", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.adminToken)

			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
