package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// FromFiberError dipakai sebagai fiber.Config.ErrorHandler: *fiber.Error
// (401 dari auth, 404 route, 413 body, dst.) jadi envelope JSON standar.
// Selain itu → 500 tanpa membocorkan pesan internal.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, "")
}
