package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/pkg/media"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

type Media struct {
	Store *media.Store
}

func InitRestMedia(app fiber.Router, store *media.Store) Media {
	rest := Media{Store: store}
	app.Post("/media/images", rest.UploadImage)
	app.Post("/media/documents", rest.UploadDocument)

	return rest
}

func (h *Media) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "file: " + err.Error(),
		})
	}

	stored, err := h.Store.SaveImage(file)
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Image uploaded",
		Results: stored,
	})
}

func (h *Media) UploadDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "file: " + err.Error(),
		})
	}

	stored, err := h.Store.SaveDocument(file, media.KindDocuments)
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Document uploaded",
		Results: stored,
	})
}
