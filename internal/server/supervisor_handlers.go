package server

import "github.com/gofiber/fiber/v2"

// ListSupervisorCapacity handles GET /api/supervisors/capacity
// @Summary Capacity views for every supervisor
// @Tags supervisors
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.SupervisorCapacityView
// @Router /supervisors/capacity [get]
func (s *Server) ListSupervisorCapacity(c *fiber.Ctx) error {
	views, err := s.capacityViews.List(c.UserContext(), parsePagination(c, defaultPageLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// GetSupervisorCapacity handles GET /api/supervisors/:id/capacity
// @Summary Capacity view for one supervisor
// @Tags supervisors
// @Security BearerAuth
// @Produce json
// @Param id path int true "Supervisor ID"
// @Success 200 {object} models.SupervisorCapacityView
// @Failure 404 {object} models.ErrorResponse
// @Router /supervisors/{id}/capacity [get]
func (s *Server) GetSupervisorCapacity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.capacityViews.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
