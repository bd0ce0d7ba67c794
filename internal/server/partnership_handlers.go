package server

import (
	"capstone/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendPartnershipRequest handles POST /api/partnerships/requests
// @Summary Send a partnership request
// @Tags partnerships
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body SendPartnershipRequestInput true "Target student"
// @Success 201 {object} models.PartnershipRequest
// @Failure 409 {object} models.ErrorResponse
// @Router /partnerships/requests [post]
func (s *Server) SendPartnershipRequest(c *fiber.Ctx) error {
	var in SendPartnershipRequestInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}

	req, err := s.partnerships.SendRequest(c.UserContext(), callerID(c), in.TargetID, in.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

// RespondToPartnershipRequest handles POST /api/partnerships/requests/:requestId/respond
// @Summary Accept or reject a partnership request
// @Tags partnerships
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param requestId path int true "Request ID"
// @Param body body RespondPartnershipRequestInput true "accept or reject"
// @Success 200 {object} models.PartnershipRequest
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /partnerships/requests/{requestId}/respond [post]
func (s *Server) RespondToPartnershipRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}
	var in RespondPartnershipRequestInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}

	req, err := s.partnerships.Respond(c.UserContext(), requestID, callerID(c), in.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}

// CancelPartnershipRequest handles POST /api/partnerships/requests/:requestId/cancel
// @Summary Withdraw a sent partnership request
// @Tags partnerships
// @Security BearerAuth
// @Produce json
// @Param requestId path int true "Request ID"
// @Success 200 {object} models.PartnershipRequest
// @Failure 409 {object} models.ErrorResponse
// @Router /partnerships/requests/{requestId}/cancel [post]
func (s *Server) CancelPartnershipRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	req, err := s.partnerships.Cancel(c.UserContext(), requestID, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}

// Unpair handles DELETE /api/partnerships/me
// @Summary Dissolve the caller's partnership
// @Tags partnerships
// @Security BearerAuth
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /partnerships/me [delete]
func (s *Server) Unpair(c *fiber.Ctx) error {
	if err := s.partnerships.Unpair(c.UserContext(), callerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPartnershipStatus handles GET /api/partnerships/me
// @Summary Caller's partnership status, partner and open requests
// @Tags partnerships
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.PartnershipOverview
// @Router /partnerships/me [get]
func (s *Server) GetPartnershipStatus(c *fiber.Ctx) error {
	overview, err := s.partnerships.GetPartnershipStatus(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(overview)
}

// ListPartnershipRequests handles GET /api/partnerships/requests?direction=&status=
// @Summary List the caller's partnership requests
// @Tags partnerships
// @Security BearerAuth
// @Produce json
// @Param direction query string false "incoming, outgoing or all"
// @Param status query string false "pending, accepted, rejected or cancelled"
// @Success 200 {array} models.PartnershipRequest
// @Router /partnerships/requests [get]
func (s *Server) ListPartnershipRequests(c *fiber.Ctx) error {
	direction := models.RequestDirection(c.Query("direction", string(models.RequestDirectionAll)))
	status := models.PartnershipRequestStatus(c.Query("status"))

	requests, err := s.partnerships.ListRequests(c.UserContext(), callerID(c), direction, status, parsePagination(c, defaultPageLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

// ListAvailableStudents handles GET /api/partnerships/available
// @Summary Students who can receive a partnership request
// @Tags partnerships
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.StudentSummary
// @Router /partnerships/available [get]
func (s *Server) ListAvailableStudents(c *fiber.Ctx) error {
	students, err := s.partnerships.ListAvailableStudents(c.UserContext(), callerID(c), parsePagination(c, defaultPageLimit))
	if err != nil {
		return respondError(c, err)
	}

	out := make([]models.StudentSummary, 0, len(students))
	for i := range students {
		out = append(out, students[i].Summary())
	}
	return c.JSON(out)
}
