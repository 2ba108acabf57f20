package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/servease/marketplace/models"
)

// Locals keys populated by Protected.
const (
	LocalUserID = "userID"
	LocalRole   = "role"
)

// Protected verifies the bearer token and exposes the caller's identity to
// downstream handlers. Verification is read-only; a bad token rejects the
// request before any state is touched.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthenticated(c, "No authentication token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthenticated(c, "Invalid token claims")
			}

			id, ok := claims["id"].(string)
			if !ok || id == "" {
				return unauthenticated(c, "Invalid user ID in token")
			}
			rawRole, _ := claims["role"].(string)
			role, err := models.ParseRole(rawRole)
			if err != nil {
				return unauthenticated(c, "Invalid role in token")
			}

			c.Locals(LocalUserID, id)
			c.Locals(LocalRole, role)
			return c.Next()
		},
	})
}

// RequireRole restricts a route to callers whose role is in the allow-set.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(models.Role)
		if !ok {
			return unauthenticated(c, "No authentication token")
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Forbidden: insufficient privileges",
			})
		}
		return c.Next()
	}
}

// CallerID returns the authenticated user's id set by Protected.
func CallerID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(LocalUserID).(string)
	return id, ok
}

// CallerRole returns the authenticated user's role set by Protected.
func CallerRole(c *fiber.Ctx) (models.Role, bool) {
	role, ok := c.Locals(LocalRole).(models.Role)
	return role, ok
}

func unauthenticated(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": msg})
}

func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Invalid or expired token",
	})
}
