package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned by the partnership and application engines.
const (
	CodeNotFound                  = "NOT_FOUND"
	CodeValidation                = "VALIDATION_ERROR"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeInternal                  = "INTERNAL_ERROR"
	CodeAlreadyPartneredOrPending = "ALREADY_PARTNERED_OR_PENDING"
	CodeTargetUnavailable         = "TARGET_UNAVAILABLE"
	CodeReciprocalRequestExists   = "RECIPROCAL_REQUEST_EXISTS"
	CodeRequestNotActionable      = "REQUEST_NOT_ACTIONABLE"
	CodeNotPaired                 = "NOT_PAIRED"
	CodeSupervisorUnavailable     = "SUPERVISOR_UNAVAILABLE"
	CodeDuplicateApplication      = "DUPLICATE_APPLICATION"
	CodeApplicationNotFound       = "APPLICATION_NOT_FOUND"
	CodeInvalidTransition         = "INVALID_TRANSITION"
	CodeContention                = "CONTENTION"
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

func newAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return newAppError(CodeNotFound, fmt.Sprintf("%s with ID %v not found", resource, id))
}

func NewValidationError(message string) *AppError {
	return newAppError(CodeValidation, message)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(CodeUnauthorized, message)
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

func NewAlreadyPartneredOrPendingError() *AppError {
	return newAppError(CodeAlreadyPartneredOrPending, "You already have a partner or an open partnership request")
}

func NewTargetUnavailableError() *AppError {
	return newAppError(CodeTargetUnavailable, "This student is not available for a partnership")
}

func NewReciprocalRequestExistsError(requestID uint) *AppError {
	return newAppError(CodeReciprocalRequestExists,
		fmt.Sprintf("This student already sent you a request (ID %d); respond to it instead", requestID))
}

func NewRequestNotActionableError() *AppError {
	return newAppError(CodeRequestNotActionable, "Partnership request is not pending")
}

func NewNotPairedError() *AppError {
	return newAppError(CodeNotPaired, "You do not have a partner")
}

func NewSupervisorUnavailableError() *AppError {
	return newAppError(CodeSupervisorUnavailable, "Supervisor is not accepting applications")
}

func NewDuplicateApplicationError() *AppError {
	return newAppError(CodeDuplicateApplication, "You already have an active application with this supervisor")
}

func NewApplicationNotFoundError(id uint) *AppError {
	return newAppError(CodeApplicationNotFound, fmt.Sprintf("Application with ID %d not found", id))
}

func NewInvalidTransitionError(from, to ApplicationStatus) *AppError {
	return newAppError(CodeInvalidTransition, fmt.Sprintf("Cannot move application from %s to %s", from, to))
}

func NewContentionError(err error) *AppError {
	return &AppError{
		Code:    CodeContention,
		Message: "Too many concurrent updates, please retry",
		Err:     err,
	}
}

// IsCode reports whether err carries an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Retryable reports whether the caller may retry the failed operation.
func Retryable(err error) bool {
	return IsCode(err, CodeContention)
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		// Internal causes stay in the logs.
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
