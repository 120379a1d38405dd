package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legalflow-backend/internal/store"
)

type Handler struct{ store store.Store }

func NewHandler(st store.Store) *Handler { return &Handler{store: st} }

// Dashboard Stats godoc
// @Summary      Dashboard statistics
// @Description  Case, client and pending reminder counts
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.DashboardStats
// @Router       /dashboard/stats [get]
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.store.GetDashboardStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
