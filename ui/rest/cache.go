package rest

import (
	"github.com/gofiber/fiber/v2"
	domainCache "github.com/jivitsolutions/jivit-site/domains/cache"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

type Cache struct {
	Service domainCache.ICacheUsecase
}

func InitRestCache(app fiber.Router, service domainCache.ICacheUsecase) Cache {
	rest := Cache{Service: service}
	app.Get("/cache/stats", rest.GetStats)
	app.Get("/cache/keys", rest.GetKeys)
	app.Post("/cache/invalidate", rest.Invalidate)

	return rest
}

func (handler *Cache) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Service.GetStats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

func (handler *Cache) GetKeys(c *fiber.Ctx) error {
	keys, err := handler.Service.Keys(c.UserContext(), c.Query("tier"), c.Query("prefix"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache keys retrieved",
		Results: keys,
	})
}

func (handler *Cache) Invalidate(c *fiber.Ctx) error {
	var req domainCache.InvalidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	res, err := handler.Service.Invalidate(c.UserContext(), req)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache invalidated",
		Results: res,
	})
}
