package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"edu-chatbot-be/internal/apperror"
)

// BaseResponse is the JSON envelope every endpoint returns.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens the field
// errors into a single readable message.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()))
			}
			return apperror.Validation(strings.Join(msgs, "; "))
		}
		return apperror.Validation(err.Error())
	}
	return nil
}

// ErrorHandlerMiddleware maps domain errors returned by handlers to
// HTTP status codes so controllers can just `return err`.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			code = fiber.StatusNotFound
			message = err.Error()
		case errors.Is(err, apperror.ErrUnauthorized):
			code = fiber.StatusUnauthorized
			message = err.Error()
		case errors.Is(err, apperror.ErrValidation):
			code = fiber.StatusBadRequest
			message = err.Error()
		case errors.Is(err, apperror.ErrUpstreamUnavailable):
			code = fiber.StatusServiceUnavailable
			message = err.Error()
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
