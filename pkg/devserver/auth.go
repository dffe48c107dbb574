package devserver

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const localsSubject = "subject"

// requireBearer rejects requests without a bearer token. With a secret set,
// the token must be a valid HS256 JWT signed with it.
func requireBearer(secret string) fiber.Handler {
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		scheme, raw, ok := strings.Cut(authz, " ")
		raw = strings.TrimSpace(raw)
		if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "missing bearer token"})
		}

		if secret == "" {
			return c.Next()
		}

		tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !tok.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid token"})
		}

		if sub, err := tok.Claims.GetSubject(); err == nil && sub != "" {
			c.Locals(localsSubject, sub)
		}
		return c.Next()
	}
}
