package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
	apperrors "github.com/helpdesk-ops/ticket-assignment/pkg/util/errorutil"
)

// RequireScope ensures the caller's token grants scope.
func RequireScope(scope domain.Scope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Claims.HasScope(scope) {
			return apperrors.NewForbidden("missing scope " + string(scope))
		}
		return c.Next()
	}
}
