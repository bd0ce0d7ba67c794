package server

import (
	"errors"
	"fmt"
	"strings"

	"capstone/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SendPartnershipRequestInput is the body of POST /api/partnerships/requests.
type SendPartnershipRequestInput struct {
	TargetID uint   `json:"target_id" validate:"required,gt=0"`
	Message  string `json:"message" validate:"max=500"`
}

// RespondPartnershipRequestInput is the body of POST /api/partnerships/requests/:requestId/respond.
type RespondPartnershipRequestInput struct {
	Action models.RespondAction `json:"action" validate:"required,oneof=accept reject"`
}

// SubmitApplicationInput is the body of POST /api/applications.
type SubmitApplicationInput struct {
	SupervisorID uint `json:"supervisor_id" validate:"required,gt=0"`
	models.ProjectDetails
}

// DecideApplicationInput is the body of POST /api/applications/:id/decision.
type DecideApplicationInput struct {
	Status   models.ApplicationStatus `json:"status" validate:"required"`
	Feedback string                   `json:"feedback" validate:"max=2000"`
}

// bindJSON parses the body into dst and validates it. On failure it writes a
// 400 response and returns errResponseWritten.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := validate.Struct(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(describeValidation(err)))
		return errResponseWritten
	}
	return nil
}

// describeValidation turns validator errors into one readable sentence.
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "Invalid request body"
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatValidationError(fe))
	}
	return strings.Join(msgs, "; ")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
