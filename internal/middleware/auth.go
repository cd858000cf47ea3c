package middleware

import (
	"strconv"

	"github.com/TheX6/partnerkin-super-bot/internal/dto"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminSession accepts a bearer admin session token. Signature and expiry are
// checked by the JWT middleware; the token must also be the one currently
// held for its subject, so logging out revokes it.
func AdminSession(auth *services.AdminAuth) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: auth.Secret()},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok || token == nil {
				return unauthorized(c)
			}
			sub, err := token.Claims.GetSubject()
			if err != nil {
				return unauthorized(c)
			}
			id, err := strconv.ParseInt(sub, 10, 64)
			if err != nil {
				return unauthorized(c)
			}
			if err := auth.Verify(id, token.Raw); err != nil {
				return unauthorized(c)
			}
			c.Locals(LocalTelegramID, id)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired session",
	})
}
