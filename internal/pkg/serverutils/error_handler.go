package serverutils

import (
	"errors"

	"chatdoc-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an application error onto an HTTP status and a client
// message. The third value is optional detail for the response body.
func StatusFor(err error) (int, string, interface{}) {
	var (
		fiberErr      *fiber.Error
		validationErr *ValidationError
		configErr     *apperror.ConfigError
		providerErr   *apperror.ProviderError
		notFoundErr   *apperror.NotFoundError
		extractionErr *apperror.ExtractionError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message, nil
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, "Invalid request", validationErr.Fields
	case errors.As(err, &configErr):
		return fiber.StatusInternalServerError, "AI provider is not configured", fiber.Map{"setting": configErr.Setting}
	case errors.As(err, &providerErr):
		return fiber.StatusBadGateway, "AI provider request failed", fiber.Map{
			"status": providerErr.Status,
			"body":   providerErr.Body,
		}
	case errors.As(err, &notFoundErr):
		return fiber.StatusNotFound, notFoundErr.Error(), nil
	case errors.As(err, &extractionErr):
		return fiber.StatusInternalServerError, "Failed to extract text from PDF", fiber.Map{
			"exit_code":  extractionErr.ExitCode,
			"diagnostic": extractionErr.Diagnostic,
		}
	case errors.Is(err, apperror.ErrDuplicateKey):
		return fiber.StatusConflict, err.Error(), nil
	case errors.Is(err, apperror.ErrUnauthorized):
		return fiber.StatusUnauthorized, err.Error(), nil
	case errors.Is(err, apperror.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error(), nil
	}
	return fiber.StatusInternalServerError, "Internal server error", nil
}

// ErrorHandler is installed as fiber.Config.ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code, message, data := StatusFor(err)
	return ctx.Status(code).JSON(ErrorResponseWithData(code, message, data))
}

// ErrorHandlerMiddleware renders errors returned by downstream handlers
// before other middleware sees them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}
