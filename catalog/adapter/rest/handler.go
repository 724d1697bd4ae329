package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/catalog/application"
	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
	"github.com/jivitsolutions/jivit-site/ui/rest/middleware"
)

// resourceHandler exposes one catalog resource. X is the partial update body.
type resourceHandler[D any, P interface {
	*D
	domain.Entity
}, X domain.Patch[D]] struct {
	svc  *application.Resource[D, P]
	name string
}

func (h resourceHandler[D, P, X]) registerPublic(r fiber.Router, path string) {
	r.Get(path, h.listPublic)
	r.Get(path+"/:id", h.getPublic)
}

func (h resourceHandler[D, P, X]) registerAdmin(r fiber.Router, path string) {
	r.Get(path, h.listAdmin)
	r.Post(path, h.create)
	r.Get(path+"/:id", h.getAdmin)
	r.Put(path+"/:id", h.update)
	r.Delete(path+"/:id", h.delete)
}

func (h resourceHandler[D, P, X]) listPublic(c *fiber.Ctx) error {
	items, err := h.svc.List(c.UserContext(), domain.ListFilter{Category: c.Query("category")})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get " + h.name,
		Results: items,
	})
}

func (h resourceHandler[D, P, X]) getPublic(c *fiber.Ctx) error {
	item, err := h.svc.Get(c.UserContext(), c.Params("id"), false)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get " + h.name,
		Results: item,
	})
}

func (h resourceHandler[D, P, X]) listAdmin(c *fiber.Ctx) error {
	items, err := h.svc.List(c.UserContext(), domain.ListFilter{
		IncludeInactive: c.QueryBool("include_inactive", true),
		Category:        c.Query("category"),
	})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get " + h.name,
		Results: items,
	})
}

func (h resourceHandler[D, P, X]) getAdmin(c *fiber.Ctx) error {
	item, err := h.svc.Get(c.UserContext(), c.Params("id"), true)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get " + h.name,
		Results: item,
	})
}

func (h resourceHandler[D, P, X]) create(c *fiber.Ctx) error {
	var item D
	if err := c.BodyParser(&item); err != nil {
		return badRequest(c, err)
	}

	created, err := h.svc.Create(c.UserContext(), middleware.ActorFrom(c), &item)
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Success create " + h.name,
		Results: created,
	})
}

func (h resourceHandler[D, P, X]) update(c *fiber.Ctx) error {
	var patch X
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, err)
	}

	updated, err := h.svc.Update(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), patch)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update " + h.name,
		Results: updated,
	})
}

func (h resourceHandler[D, P, X]) delete(c *fiber.Ctx) error {
	err := h.svc.Delete(c.UserContext(), middleware.ActorFrom(c), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete " + h.name,
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
		Status:  400,
		Code:    "BAD_REQUEST",
		Message: err.Error(),
	})
}
