package rest

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/leads/application"
	"github.com/jivitsolutions/jivit-site/leads/domain"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
	"github.com/jivitsolutions/jivit-site/ui/rest/middleware"
)

type Leads struct {
	Service *application.Service
}

func InitRestLeads(public, admin fiber.Router, service *application.Service) Leads {
	rest := Leads{Service: service}

	public.Post("/applications", rest.SubmitApplication)
	public.Post("/applications/validate-step/:step", rest.ValidateStep)
	public.Post("/inquiries", rest.SubmitInquiry)

	admin.Get("/applications", rest.Inbox)
	admin.Get("/applications/:id", rest.GetApplication)
	admin.Put("/applications/:id/status", rest.UpdateStatus)

	return rest
}

func (h *Leads) SubmitApplication(c *fiber.Ctx) error {
	var form domain.JobApplicationForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, err)
	}

	app, err := h.Service.SubmitJobApplication(c.UserContext(), form, optionalFile(c, "resume"))
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Application submitted",
		Results: app,
	})
}

func (h *Leads) ValidateStep(c *fiber.Ctx) error {
	step, err := c.ParamsInt("step")
	if err != nil {
		return badRequest(c, err)
	}
	var form domain.JobApplicationForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, err)
	}

	utils.PanicIfNeeded(h.Service.ValidateStep(step, form))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Step is valid",
		Results: map[string]any{"step": step, "total_steps": domain.TotalSteps},
	})
}

func (h *Leads) SubmitInquiry(c *fiber.Ctx) error {
	var form domain.ServiceInquiryForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, err)
	}

	app, err := h.Service.SubmitServiceInquiry(c.UserContext(), form, optionalFile(c, "document"))
	utils.PanicIfNeeded(err)

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Inquiry submitted",
		Results: app,
	})
}

func (h *Leads) Inbox(c *fiber.Ctx) error {
	inbox, err := h.Service.Inbox(c.UserContext(), domain.Filter{
		Search:     c.Query("search"),
		Status:     domain.Status(c.Query("status")),
		SourceType: domain.SourceType(c.Query("source_type")),
		Limit:      c.QueryInt("limit"),
	})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get applications",
		Results: inbox,
	})
}

func (h *Leads) GetApplication(c *fiber.Ctx) error {
	app, err := h.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get application",
		Results: app,
	})
}

func (h *Leads) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status domain.Status `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	app, err := h.Service.UpdateStatus(c.UserContext(), middleware.ActorFrom(c), c.Params("id"), req.Status)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Application status updated",
		Results: app,
	})
}

// optionalFile returns the uploaded file under field, or nil for JSON bodies
// and forms without it.
func optionalFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
		Status:  400,
		Code:    "BAD_REQUEST",
		Message: err.Error(),
	})
}
