package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-items/pkg/jwt"
	"github.com/jhoicas/inventory-items/pkg/logger"
)

// Locals keys para UserID y Username en Fiber.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// PrincipalChecker confirma que el usuario del token sigue existiendo y activo.
type PrincipalChecker interface {
	IsActiveUser(ctx context.Context, userID string) (bool, error)
}

// AuthMiddleware valida el Bearer Token de acceso y carga UserID y Username en c.Locals.
// Header ausente o mal formado, token inválido, expirado, de tipo refresh o de un usuario inactivo: 401.
func AuthMiddleware(jwtSecret string, principals PrincipalChecker, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c)
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c)
		}
		claims, err := jwt.Parse(jwtSecret, tokenString, jwt.TokenTypeAccess)
		if err != nil {
			return unauthorized(c)
		}
		if principals != nil {
			active, err := principals.IsActiveUser(c.UserContext(), claims.UserID)
			if err != nil {
				return respondError(c, log, err)
			}
			if !active {
				return unauthorized(c)
			}
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetUsername devuelve el Username del contexto (después del middleware de auth).
func GetUsername(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUsername).(string)
	return s
}
