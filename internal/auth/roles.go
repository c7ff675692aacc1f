package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// RequireAdmin ensures the principal holds the admin role. The check runs
// against the stored role, not the token snapshot, so a demotion takes
// effect before the old token expires.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.User.Role != domain.RoleAdmin {
			return domain.ErrAdminRequired
		}
		return c.Next()
	}
}
