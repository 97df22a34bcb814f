package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusError lets a domain error carry its HTTP status
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

func WithStatus(status int, err error) error {
	return &StatusError{Status: status, Err: err}
}

// ErrorHandlerMiddleware turns handler errors into the JSON envelope
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, msg := StatusOf(err)
		return ctx.Status(code).JSON(ErrorResponse(code, msg))
	}
}

func StatusOf(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, se.Err.Error()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, ve.Error()
	}
	return fiber.StatusInternalServerError, err.Error()
}
