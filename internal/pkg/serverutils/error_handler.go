package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/pkg/logger"
)

// NewErrorHandler maps domain errors to HTTP statuses so controllers
// can just return errors.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		var validation *apperror.ValidationError
		var notFound *apperror.NotFoundError
		var exhausted *apperror.AllProvidersExhausted
		var parse *apperror.ParseError
		var ingestion *apperror.IngestionFailed
		var streaming *apperror.StreamingError
		var timeout *apperror.UpstreamTimeout
		var upstream *apperror.UpstreamError

		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
		case errors.As(err, &validation):
			code = fiber.StatusBadRequest
		case errors.As(err, &notFound):
			code = fiber.StatusNotFound
		case errors.As(err, &exhausted):
			code = fiber.StatusServiceUnavailable
			return ctx.Status(code).JSON(ApiError{
				Code:    code,
				Message: "all generation providers failed",
				Details: exhausted.Failures,
			})
		case errors.As(err, &parse):
			code = fiber.StatusBadGateway
		case errors.As(err, &ingestion):
			code = fiber.StatusUnprocessableEntity
		case errors.As(err, &streaming):
			code = fiber.StatusBadGateway
		case errors.As(err, &timeout):
			code = fiber.StatusGatewayTimeout
		case errors.As(err, &upstream):
			code = fiber.StatusBadGateway
		}

		if code >= 500 {
			log.Error("http", "request failed", map[string]interface{}{
				"path":   ctx.Path(),
				"method": ctx.Method(),
				"status": code,
				"error":  err.Error(),
			})
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
