// Package middleware provides HTTP middleware for the fiber application.
package middleware

import (
	"log"
	"strings"

	"vaultpay/internal/models"
	"vaultpay/internal/repositories/cache"
	"vaultpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT bearer tokens and stores the user claims in
// the request locals. Revoked tokens are rejected via the Redis blacklist.
type AuthMiddleware struct {
	blacklist *cache.TokenBlacklist
}

func NewAuthMiddleware(blacklist *cache.TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{blacklist: blacklist}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("token validation error: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	if m.blacklist != nil {
		revoked, err := m.blacklist.IsRevoked(c.Context(), tokenString)
		if err != nil {
			log.Printf("blacklist check failed: %v", err)
		} else if revoked {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "token revoked"})
		}
	}

	c.Locals("claims", claims)
	c.Locals("token", tokenString)
	return c.Next()
}

// RequirePermission gates a route on one claim permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		if !claims.HasPermission(permission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}
		return c.Next()
	}
}
