package Controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"CoHub/Models"
)

// respondError maps the error taxonomy onto a status code and a message
// that is safe to show. Store failures are logged and reported generically.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var invalid *Models.ValidationError
	var store *Models.StoreError

	switch {
	case errors.As(err, &invalid):
		body := fiber.Map{"error": invalid.Message}
		if invalid.Field != "" {
			body["field"] = invalid.Field
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, Models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": capitalize(err.Error())})
	case errors.Is(err, Models.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a member of this project"})
	}

	op := "process request"
	if errors.As(err, &store) {
		op = store.Op
	}
	log.Error("request failed",
		zap.String("op", op),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals("requestId")),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to " + op})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
