package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/domains/assistant"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

type Assistant struct {
	Service assistant.IAssistantUsecase
}

func InitRestAssistant(app fiber.Router, service assistant.IAssistantUsecase) Assistant {
	rest := Assistant{Service: service}
	app.Get("/assistant", rest.Greeting)
	app.Post("/assistant", rest.Ask)

	return rest
}

func (h *Assistant) Greeting(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Assistant ready",
		Results: h.Service.Greeting(),
	})
}

func (h *Assistant) Ask(c *fiber.Ctx) error {
	var req assistant.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	reply, err := h.Service.Ask(c.UserContext(), req)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Assistant replied",
		Results: reply,
	})
}
