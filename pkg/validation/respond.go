package validation

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

// Respond writes the 400 Laravel-style body: {message, errors:{field:[...]}}.
func Respond(c *fiber.Ctx, errs map[string][]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{
		Message: "Validation failed",
		Errors:  errs,
	})
}
