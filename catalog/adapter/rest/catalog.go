package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jivitsolutions/jivit-site/catalog/application"
	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

type Catalog struct {
	Service *application.Catalog
}

// InitRestCatalog mounts read-only routes on public and CRUD routes on admin.
func InitRestCatalog(public fiber.Router, admin fiber.Router, service *application.Catalog) Catalog {
	rest := Catalog{Service: service}

	services := resourceHandler[domain.ServiceOffering, *domain.ServiceOffering, domain.ServicePatch]{svc: service.Services, name: "services"}
	jobs := resourceHandler[domain.JobOpening, *domain.JobOpening, domain.JobPatch]{svc: service.Jobs, name: "job openings"}
	programs := resourceHandler[domain.StudentProgram, *domain.StudentProgram, domain.ProgramPatch]{svc: service.Programs, name: "student programs"}
	blogs := resourceHandler[domain.BlogPost, *domain.BlogPost, domain.BlogPatch]{svc: service.Blogs.Resource, name: "blog posts"}

	services.registerPublic(public, "/services")
	jobs.registerPublic(public, "/jobs")
	programs.registerPublic(public, "/programs")
	public.Get("/blogs", blogs.listPublic)
	public.Get("/blogs/:slug", rest.GetBlogBySlug)

	services.registerAdmin(admin, "/services")
	jobs.registerAdmin(admin, "/jobs")
	programs.registerAdmin(admin, "/programs")
	blogs.registerAdmin(admin, "/blogs")

	return rest
}

func (handler *Catalog) GetBlogBySlug(c *fiber.Ctx) error {
	post, err := handler.Service.Blogs.GetBySlug(c.UserContext(), c.Params("slug"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success get blog post",
		Results: post,
	})
}
