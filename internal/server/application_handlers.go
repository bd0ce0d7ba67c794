package server

import (
	"capstone/internal/models"
	"capstone/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// SubmitApplication handles POST /api/applications
// @Summary Apply to a supervisor, linking with the caller's partner
// @Tags applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body SubmitApplicationInput true "Supervisor and project"
// @Success 201 {object} service.SubmitResult
// @Failure 409 {object} models.ErrorResponse
// @Router /applications [post]
func (s *Server) SubmitApplication(c *fiber.Ctx) error {
	var in SubmitApplicationInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}

	res, err := s.applications.Submit(c.UserContext(), callerID(c), in.SupervisorID, in.ProjectDetails)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"application_ids":    res.IDs(),
		"application":        res.Application,
		"linked_application": res.Linked,
	})
}

// DecideApplication handles POST /api/applications/:id/decision
// @Summary Approve, reject or request revision of an application
// @Tags applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param body body DecideApplicationInput true "Decision"
// @Success 200 {object} models.Application
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /applications/{id}/decision [post]
func (s *Server) DecideApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in DecideApplicationInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}

	app, err := s.applications.Decide(c.UserContext(), actorFrom(c), id, in.Status, in.Feedback)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(app)
}

// ResubmitApplication handles POST /api/applications/:id/resubmit
// @Summary Resubmit an application after a revision request
// @Tags applications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param body body models.ProjectDetails true "Revised project"
// @Success 200 {object} models.Application
// @Router /applications/{id}/resubmit [post]
func (s *Server) ResubmitApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in models.ProjectDetails
	if err := bindJSON(c, &in); err != nil {
		return nil
	}

	app, err := s.applications.Resubmit(c.UserContext(), id, callerID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(app)
}

// ListApplications handles GET /api/applications?status=&student_id=&supervisor_id=
// @Summary Applications visible to the caller
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Application
// @Router /applications [get]
func (s *Server) ListApplications(c *fiber.Ctx) error {
	filter := repository.ApplicationFilter{
		StudentID:    uint(c.QueryInt("student_id", 0)),
		SupervisorID: uint(c.QueryInt("supervisor_id", 0)),
		Status:       models.ApplicationStatus(c.Query("status")),
	}

	apps, err := s.applications.List(c.UserContext(), actorFrom(c), filter, parsePagination(c, defaultPageLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(apps)
}

// GetApplication handles GET /api/applications/:id
// @Summary One application, for the applicant, their partner or the supervisor
// @Tags applications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} models.Application
// @Router /applications/{id} [get]
func (s *Server) GetApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	app, err := s.applications.Get(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(app)
}
