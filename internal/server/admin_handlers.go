package server

import (
	"log/slog"

	"capstone/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// ReconcileSupervisorCapacity handles POST /api/admin/supervisors/:id/reconcile
// @Summary Recompute a supervisor's capacity from approved applications
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Supervisor ID"
// @Success 200 {object} service.ReconcileResult
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/supervisors/{id}/reconcile [post]
func (s *Server) ReconcileSupervisorCapacity(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.applications.ReconcileCapacity(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if result.Changed() {
		middleware.Logger.WarnContext(c.UserContext(), "supervisor capacity drift repaired",
			slog.Uint64("supervisor_id", uint64(id)),
			slog.Int("before", result.Before),
			slog.Int("after", result.After),
		)
	}
	return c.JSON(fiber.Map{
		"supervisor_id": result.SupervisorID,
		"before":        result.Before,
		"after":         result.After,
		"changed":       result.Changed(),
	})
}
