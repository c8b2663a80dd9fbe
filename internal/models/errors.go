package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced in API responses.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the standardized API error envelope.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
	Data      any    `json:"data"`
}

// AppError represents a custom application error. Fields holds per-field
// validation messages for VALIDATION_ERROR; it is nil for other codes.
type AppError struct {
	Code    string
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports that a resource does not exist.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: resource + " not found",
	}
}

// NewValidationError reports a single-message validation failure.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldValidationError reports a validation failure with per-field messages.
func NewFieldValidationError(fields map[string][]string, message string) *AppError {
	if message == "" {
		message = "Validation failed"
	}
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewUnauthorizedError reports a missing or invalid authentication.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewForbiddenError reports an authorization denial for an authenticated actor.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewConflictError reports a uniqueness conflict (e.g. duplicate email).
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForCode maps an application error code to its HTTP status.
func StatusForCode(code string) int {
	switch code {
	case CodeValidation:
		return fiber.StatusUnprocessableEntity
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes a standardized error response. AppErrors choose
// their HTTP status from their code; any other error becomes a 500.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = NewInternalError(err)
	}

	response := ErrorResponse{
		Success:   false,
		Message:   appErr.Message,
		ErrorCode: appErr.Code,
	}
	if appErr.Fields != nil {
		response.Data = fiber.Map{"errors": appErr.Fields}
	}

	return c.Status(StatusForCode(appErr.Code)).JSON(response)
}
