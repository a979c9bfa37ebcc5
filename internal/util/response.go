package util

import (
	"errors"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/recruitdesk/candidate-intake/internal/apperr"
	"github.com/recruitdesk/candidate-intake/internal/config"
	"github.com/recruitdesk/candidate-intake/internal/response"
)

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code    int
	Message string
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Kind       string `json:"kind,omitempty"`
	DevMessage string `json:"dev_message,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

// SuccessResponse writes the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
	})
}

// ErrorResponse writes the standard error envelope. The taxonomy kind of a
// typed error decides the HTTP status; dev details only leave the process
// outside production.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	resp := OrderedErrorResponse{
		Success: false,
		Message: params.Message,
	}

	code := params.Code
	if len(errs) > 0 && errs[0] != nil {
		var typed *apperr.Error
		if errors.As(errs[0], &typed) {
			resp.Kind = string(typed.Kind)
			if code == 0 {
				code = StatusForKind(typed.Kind)
			}
		}
		if config.LoadAppConfig().Env != "production" {
			resp.DevMessage = errs[0].Error()
			resp.Trace = string(debug.Stack())
		}
	}
	if code == 0 {
		code = fiber.StatusInternalServerError
	}

	return c.Status(code).JSON(resp)
}

// StatusForKind maps the error taxonomy onto HTTP statuses.
func StatusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindRateLimited:
		return fiber.StatusTooManyRequests
	case apperr.KindUnauthorized:
		return fiber.StatusBadGateway
	case apperr.KindUnavailable:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
