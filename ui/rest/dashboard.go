package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/domains/dashboard"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

type Dashboard struct {
	Service dashboard.IDashboardUsecase
}

func InitRestDashboard(app fiber.Router, service dashboard.IDashboardUsecase) Dashboard {
	rest := Dashboard{Service: service}
	app.Get("/dashboard", rest.GetStats)

	return rest
}

func (h *Dashboard) GetStats(c *fiber.Ctx) error {
	stats, err := h.Service.GetStats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Dashboard stats retrieved",
		Results: stats,
	})
}
