package utils

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ParamID parses a positive integer route parameter such as :id.
// A malformed value is a 400, never a lookup.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(n), nil
}

// TrimPtr trims the pointed-to string, leaving nil as nil.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
