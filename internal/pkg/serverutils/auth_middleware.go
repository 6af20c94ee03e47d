package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ownerIdLocal = "owner_id"

// NewAuthMiddleware returns the optional JWT guard. When auth is
// disabled it is a no-op and every record is unowned; when enabled the
// token's user_id claim becomes the owner id.
func NewAuthMiddleware(enabled bool, secret string) fiber.Handler {
	if !enabled {
		return func(ctx *fiber.Ctx) error {
			return ctx.Next()
		}
	}

	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		userIdStr, _ := claims["user_id"].(string)
		userId, err := uuid.Parse(userIdStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid user id claim"))
		}

		ctx.Locals(ownerIdLocal, userId)
		return ctx.Next()
	}
}

// OwnerId reads the authenticated owner from the request, nil in
// no-auth mode.
func OwnerId(ctx *fiber.Ctx) *uuid.UUID {
	if id, ok := ctx.Locals(ownerIdLocal).(uuid.UUID); ok {
		return &id
	}
	return nil
}
