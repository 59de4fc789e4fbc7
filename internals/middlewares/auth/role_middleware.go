package auth

import (
	"github.com/gofiber/fiber/v2"

	helper "coursemarket_backend/internals/helpers"
)

// OnlyRoles: role dari token harus salah satu dari roles.
func OnlyRoles(customForbiddenMessage string, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	if customForbiddenMessage == "" {
		customForbiddenMessage = "Forbidden: you are not authorized to access this resource"
	}

	return func(c *fiber.Ctx) error {
		role := helper.GetRole(c)
		if role == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		if _, ok := allowed[role]; ok {
			return c.Next()
		}
		return helper.JsonError(c, fiber.StatusForbidden, customForbiddenMessage)
	}
}

// OnlyRolesSlice: varian OnlyRoles untuk slice dari constants.
func OnlyRolesSlice(message string, roles []string) fiber.Handler {
	return OnlyRoles(message, roles...)
}
