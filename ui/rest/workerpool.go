package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/pkg/jobpool"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

type PoolStatsProvider interface {
	GetStats() jobpool.PoolStats
}

type WorkerPool struct {
	Pool PoolStatsProvider
}

func InitRestWorkerPool(app fiber.Router, pool PoolStatsProvider) WorkerPool {
	rest := WorkerPool{Pool: pool}
	app.Get("/workers/stats", rest.GetStats)

	return rest
}

// GetStats returns real-time job pool statistics
func (h *WorkerPool) GetStats(c *fiber.Ctx) error {
	if h.Pool == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  503,
			Code:    "SERVICE_UNAVAILABLE",
			Message: "Job pool not initialized",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Job pool stats retrieved",
		Results: h.Pool.GetStats(),
	})
}
