package application

import (
	"context"

	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
)

type (
	ServiceResource = Resource[domain.ServiceOffering, *domain.ServiceOffering]
	JobResource     = Resource[domain.JobOpening, *domain.JobOpening]
	ProgramResource = Resource[domain.StudentProgram, *domain.StudentProgram]
)

type Repositories struct {
	Services domain.Repository[domain.ServiceOffering]
	Jobs     domain.Repository[domain.JobOpening]
	Programs domain.Repository[domain.StudentProgram]
	Blogs    domain.BlogRepository
}

// Catalog groups the four public resources the marketing site reads.
type Catalog struct {
	Services *ServiceResource
	Jobs     *JobResource
	Programs *ProgramResource
	Blogs    *BlogService

	repos Repositories
}

func NewCatalog(repos Repositories, tiers *cache.Tiers, recorder auditDomain.Recorder) *Catalog {
	return &Catalog{
		Services: NewResource[domain.ServiceOffering, *domain.ServiceOffering](domain.KindService, cache.FamilyServices, repos.Services, tiers, recorder),
		Jobs:     NewResource[domain.JobOpening, *domain.JobOpening](domain.KindJob, cache.FamilyJobs, repos.Jobs, tiers, recorder),
		Programs: NewResource[domain.StudentProgram, *domain.StudentProgram](domain.KindProgram, cache.FamilyPrograms, repos.Programs, tiers, recorder),
		Blogs:    NewBlogService(repos.Blogs, tiers, recorder),
		repos:    repos,
	}
}

func (c *Catalog) InitSchema(ctx context.Context) error {
	for _, fn := range []func(context.Context) error{
		c.repos.Services.InitSchema,
		c.repos.Jobs.InitSchema,
		c.repos.Programs.InitSchema,
		c.repos.Blogs.InitSchema,
	} {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// PublishedJob returns the job opening only when it accepts applications.
func (c *Catalog) PublishedJob(ctx context.Context, id string) (domain.JobOpening, error) {
	return c.Jobs.Get(ctx, id, false)
}

func (c *Catalog) PublishedProgram(ctx context.Context, id string) (domain.StudentProgram, error) {
	return c.Programs.Get(ctx, id, false)
}
