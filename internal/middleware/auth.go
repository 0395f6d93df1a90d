package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"

	"crisiswatch/internal/config"
)

// AuthMiddleware guards the admin surface with a shared bearer token.
// Identity and role management belong to the surrounding ticketing
// application; this service only distinguishes its internal detection
// callers from admin tooling.
type AuthMiddleware struct {
	cfg *config.Config
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// RequireAdmin checks the Authorization bearer token against the
// configured admin token. When no token is configured (development), the
// check is disabled.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	if m.cfg.AdminToken == "" {
		return c.Next()
	}

	header := c.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "missing bearer token",
		})
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(m.cfg.AdminToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "invalid token",
		})
	}

	return c.Next()
}
