package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/domains/health"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}
	app.Get("/api/health", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	report := h.Service.Check(c.UserContext())
	if report.Status == health.StatusError {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  503,
			Code:    "SERVICE_UNAVAILABLE",
			Message: "One or more dependencies are unhealthy",
			Results: report,
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: report,
	})
}
