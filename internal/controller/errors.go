package controller

import (
	"errors"

	"ragify-be/internal/pkg/serverutils"
	"ragify-be/internal/repository/memory"
	"ragify-be/internal/service"
	"ragify-be/pkg/conversation"
	"ragify-be/pkg/notebook"

	"github.com/gofiber/fiber/v2"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{memory.ErrConversationNotFound, fiber.StatusNotFound},
	{conversation.ErrTurnInFlight, fiber.StatusConflict},
	{conversation.ErrEmptyUtterance, fiber.StatusBadRequest},
	{notebook.ErrInvalidSelection, fiber.StatusBadRequest},
	{service.ErrArchiveDisabled, fiber.StatusServiceUnavailable},
}

// httpError attaches the HTTP status of known domain errors
func httpError(err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return serverutils.WithStatus(s.status, err)
		}
	}
	return err
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}
