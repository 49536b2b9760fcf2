package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/starpass-mcp/internal/utils"
)

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	// TokenIssuer validates the wallet session tokens handed out at sign-in.
	TokenIssuer *utils.SessionTokenIssuer
	// SessionValidator, when set, rejects tokens whose wallet session has
	// ended.
	SessionValidator func(user *utils.AuthenticatedUser) error
	// Optional lets requests without a token through. A token that is
	// present must still be valid.
	Optional bool
}

// AuthMiddleware returns a Fiber middleware for Bearer token authentication.
// The authenticated user is stored in the fiber locals and in the user
// context, so services reached from the handler see it too.
func AuthMiddleware(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			if cfg.Optional {
				return c.Next()
			}
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="starpass"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid Bearer token",
			})
		}

		if cfg.TokenIssuer == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication is not configured",
			})
		}

		user, err := cfg.TokenIssuer.ValidateToken(token)
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="starpass", error="invalid_token"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Invalid token",
				"details": err.Error(),
			})
		}

		if cfg.SessionValidator != nil {
			if err := cfg.SessionValidator(user); err != nil {
				c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="starpass", error="invalid_token"`)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error":   "Wallet session is no longer active",
					"details": err.Error(),
				})
			}
		}

		c.Locals("user", user)
		c.SetUserContext(utils.WithAuthenticatedUser(c.UserContext(), user))
		return c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// GetAuthenticatedUser retrieves the authenticated user from Fiber context
// Returns nil if no user is found or if user is not of correct type
func GetAuthenticatedUser(c *fiber.Ctx) *utils.AuthenticatedUser {
	user, ok := c.Locals("user").(*utils.AuthenticatedUser)
	if !ok {
		return nil
	}
	return user
}
