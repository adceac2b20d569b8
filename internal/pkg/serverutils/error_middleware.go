package serverutils

import (
	"query-workbench-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps the error taxonomy onto HTTP statuses:
// NotFound=404, Conflict/AlreadyRunning=409, validation=400, everything
// else (storage failures included) 500 with a generic body. Execution
// errors never pass through here; a failed query is cell state, not an
// HTTP error.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		message := "internal server error"

		switch {
		case apperror.IsNotFound(err):
			status = fiber.StatusNotFound
			message = err.Error()
		case apperror.IsConflict(err), apperror.IsAlreadyRunning(err):
			status = fiber.StatusConflict
			message = err.Error()
		case apperror.IsValidation(err):
			status = fiber.StatusBadRequest
			message = err.Error()
		default:
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
				message = fiberErr.Message
			}
		}

		return ctx.Status(status).JSON(fiber.Map{"message": message})
	}
}
