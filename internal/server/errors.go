package server

import (
	"errors"
	"log/slog"

	"capstone/internal/middleware"
	"capstone/internal/models"

	"github.com/gofiber/fiber/v2"
)

var statusByCode = map[string]int{
	models.CodeValidation:                fiber.StatusBadRequest,
	models.CodeUnauthorized:              fiber.StatusForbidden,
	models.CodeNotFound:                  fiber.StatusNotFound,
	models.CodeApplicationNotFound:       fiber.StatusNotFound,
	models.CodeAlreadyPartneredOrPending: fiber.StatusConflict,
	models.CodeTargetUnavailable:         fiber.StatusConflict,
	models.CodeReciprocalRequestExists:   fiber.StatusConflict,
	models.CodeRequestNotActionable:      fiber.StatusConflict,
	models.CodeNotPaired:                 fiber.StatusConflict,
	models.CodeSupervisorUnavailable:     fiber.StatusConflict,
	models.CodeDuplicateApplication:      fiber.StatusConflict,
	models.CodeInvalidTransition:         fiber.StatusConflict,
	models.CodeContention:                fiber.StatusServiceUnavailable,
	models.CodeInternal:                  fiber.StatusInternalServerError,
}

// statusFor maps an engine error to its HTTP status.
func statusFor(err error) int {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if status, ok := statusByCode[appErr.Code]; ok {
			return status
		}
	}
	return fiber.StatusInternalServerError
}

// respondError writes err with the status its code maps to. Contention gets
// a Retry-After hint; unexpected errors are logged and rendered generically.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		err = models.NewInternalError(err)
	}
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	if models.Retryable(err) {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return models.RespondWithError(c, status, err)
}
