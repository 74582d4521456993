package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"go-marketplace-api/internal/service"
)

// serviceError maps service layer errors onto HTTP responses. Field
// validation failures echo the field map as the body, matching what
// clients of the original API expect.
func serviceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.Status(400).JSON(ve.Fields)
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotOwner):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrImageNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}
