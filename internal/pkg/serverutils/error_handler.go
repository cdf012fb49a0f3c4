package serverutils

import (
	"errors"
	"log"

	"brdgenius-be/pkg/wizard"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}
		status, body := errorBody(err)
		if status >= fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
		}
		return c.Status(status).JSON(body)
	}
}

func errorBody(err error) (int, ErrorBody) {
	var (
		appErr    *AppError
		validErrs validator.ValidationErrors
		wizardErr *wizard.ValidationError
		fiberErr  *fiber.Error
	)

	switch {
	case errors.As(err, &appErr):
		return appErr.Code, ErrorResponse(appErr.Code, appErr.Message)

	case errors.As(err, &validErrs):
		body := ErrorResponse(fiber.StatusBadRequest, "Validation failed")
		for _, fe := range validErrs {
			body.Errors = append(body.Errors, FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return fiber.StatusBadRequest, body

	case errors.As(err, &wizardErr):
		body := ErrorResponse(fiber.StatusBadRequest, wizardErr.Message)
		body.Errors = []FieldError{{Field: wizardErr.Field, Message: wizardErr.Message}}
		return fiber.StatusBadRequest, body

	case errors.Is(err, wizard.ErrNotAtStep):
		return fiber.StatusConflict, ErrorResponse(fiber.StatusConflict, err.Error())

	case errors.Is(err, wizard.ErrStepUnavailable):
		return fiber.StatusNotFound, ErrorResponse(fiber.StatusNotFound, err.Error())

	case errors.As(err, &fiberErr):
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	}

	return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, "Internal server error")
}
