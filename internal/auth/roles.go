package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

// RequireAuthenticated ensures any account is logged in.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdministrator ensures the caller holds the ADMINISTRATOR role.
func RequireAdministrator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.IsAdministrator() {
			return apperrors.NewForbidden("administrator required")
		}
		return c.Next()
	}
}
