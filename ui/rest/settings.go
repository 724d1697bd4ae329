package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/core/settings/application"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
	"github.com/jivitsolutions/jivit-site/ui/rest/middleware"
)

type Settings struct {
	Service *application.SettingsService
}

func InitRestSettings(public, admin fiber.Router, service *application.SettingsService) Settings {
	rest := Settings{Service: service}
	public.Get("/settings", rest.GetPublic)

	admin.Get("/settings", rest.GetAll)
	admin.Get("/settings/:key", rest.Get)
	admin.Put("/settings/:key", rest.Update)

	return rest
}

func (h *Settings) GetPublic(c *fiber.Ctx) error {
	pub, err := h.Service.GetPublic(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get settings",
		Results: pub,
	})
}

func (h *Settings) GetAll(c *fiber.Ctx) error {
	all, err := h.Service.GetAll(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get settings",
		Results: all,
	})
}

func (h *Settings) Get(c *fiber.Ctx) error {
	value, err := h.Service.Get(c.UserContext(), c.Params("key"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get setting",
		Results: fiber.Map{"key": c.Params("key"), "value": value},
	})
}

func (h *Settings) Update(c *fiber.Ctx) error {
	var req struct {
		Value any `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	setting, err := h.Service.Update(c.UserContext(), middleware.ActorFrom(c), c.Params("key"), req.Value)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Setting updated",
		Results: setting,
	})
}
