package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned by the repositories. The HTTP layer maps these to
// status codes; see RespondWithError and StatusForError.
const (
	CodeMissingInput      = "MISSING_INPUT"
	CodeArityError        = "ARITY_ERROR"
	CodeTypeError         = "TYPE_ERROR"
	CodeInvalidID         = "INVALID_ID"
	CodeNotFound          = "NOT_FOUND"
	CodeDuplicateUsername = "DUPLICATE_USERNAME"
	CodeDuplicateEmail    = "DUPLICATE_EMAIL"
	CodeSelfFollow        = "SELF_FOLLOW"
	CodeUpdateFailed      = "UPDATE_FAILED"
	CodeInsertFailed      = "INSERT_FAILED"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
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

// ErrorCode returns the AppError code of err, or CodeInternalError when err
// is not an AppError.
func ErrorCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternalError
}

// Predefined error constructors
func NewMissingInputError(label string) *AppError {
	return &AppError{
		Code:    CodeMissingInput,
		Message: fmt.Sprintf("%s must exist", label),
	}
}

func NewArityError(op string, got, want int) *AppError {
	return &AppError{
		Code:    CodeArityError,
		Message: fmt.Sprintf("%s expects %d arguments, got %d", op, want, got),
	}
}

func NewTypeError(message string) *AppError {
	return &AppError{
		Code:    CodeTypeError,
		Message: message,
	}
}

func NewInvalidIDError(id string) *AppError {
	return &AppError{
		Code:    CodeInvalidID,
		Message: fmt.Sprintf("invalid id %q", id),
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewDuplicateUsernameError(username string) *AppError {
	return &AppError{
		Code:    CodeDuplicateUsername,
		Message: fmt.Sprintf("username %q already in use", username),
	}
}

func NewDuplicateEmailError(email string) *AppError {
	return &AppError{
		Code:    CodeDuplicateEmail,
		Message: fmt.Sprintf("email %q already in use", email),
	}
}

func NewSelfFollowError(id string) *AppError {
	return &AppError{
		Code:    CodeSelfFollow,
		Message: fmt.Sprintf("user %s cannot follow themselves", id),
	}
}

func NewUpdateFailedError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUpdateFailed,
		Message: message,
		Err:     err,
	}
}

func NewInsertFailedError(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeInsertFailed,
		Message: fmt.Sprintf("could not add %s", resource),
		Err:     err,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidationError,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForError maps an error to the HTTP status code the API should return.
func StatusForError(err error) int {
	switch ErrorCode(err) {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeDuplicateUsername, CodeDuplicateEmail:
		return fiber.StatusConflict
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeMissingInput, CodeArityError, CodeTypeError, CodeInvalidID,
		CodeSelfFollow, CodeValidationError:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
