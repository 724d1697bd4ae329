package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"github.com/jivitsolutions/jivit-site/catalog/repository"
	"github.com/jivitsolutions/jivit-site/core/database"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRecorder struct {
	mu      sync.Mutex
	entries []auditDomain.Entry
}

func (c *captureRecorder) Record(_ context.Context, e auditDomain.Entry) {
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
}

// countingServices counts List calls that reach the database.
type countingServices struct {
	*repository.ServiceGormRepository
	lists int
}

func (r *countingServices) List(ctx context.Context, f domain.ListFilter) ([]domain.ServiceOffering, error) {
	r.lists++
	return r.ServiceGormRepository.List(ctx, f)
}

type fixture struct {
	catalog  *Catalog
	services *countingServices
	audit    *captureRecorder
	tiers    *cache.Tiers
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := database.NewMemoryDatabase(uuid.NewString())
	require.NoError(t, err)

	services := &countingServices{ServiceGormRepository: repository.NewServiceGormRepository(db)}
	rec := &captureRecorder{}
	tiers := cache.NewTiers(cache.TierOptions{}, nil)

	c := NewCatalog(Repositories{
		Services: services,
		Jobs:     repository.NewJobGormRepository(db),
		Programs: repository.NewProgramGormRepository(db),
		Blogs:    repository.NewBlogGormRepository(db),
	}, tiers, rec)
	require.NoError(t, c.InitSchema(context.Background()))

	return fixture{catalog: c, services: services, audit: rec, tiers: tiers}
}

func newService(title string, status domain.Status) *domain.ServiceOffering {
	return &domain.ServiceOffering{
		Base:        domain.Base{Status: status},
		Title:       title,
		Description: "We do " + title,
		Category:    "Cloud",
		Benefits:    []string{"fast"},
	}
}

func TestList_ReadThroughAndInvalidateOnCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.catalog.Services.Create(ctx, "admin", newService("Cloud Migration", domain.StatusPublished))
	require.NoError(t, err)

	list, err := f.catalog.Services.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = f.catalog.Services.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.services.lists, "second read must be a cache hit")

	_, err = f.catalog.Services.Create(ctx, "admin", newService("DevOps", domain.StatusPublished))
	require.NoError(t, err)

	list, err = f.catalog.Services.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2, "create must drop the cached list")
	assert.Equal(t, 2, f.services.lists)
}

func TestList_IncludeInactiveIsSeparateKey(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.catalog.Services.Create(ctx, "admin", newService("Published", domain.StatusPublished))
	require.NoError(t, err)
	_, err = f.catalog.Services.Create(ctx, "admin", newService("Draft", domain.StatusDraft))
	require.NoError(t, err)

	public, err := f.catalog.Services.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	all, err := f.catalog.Services.List(ctx, domain.ListFilter{IncludeInactive: true})
	require.NoError(t, err)

	assert.Len(t, public, 1)
	assert.Len(t, all, 2)

	byCategory, err := f.catalog.Services.List(ctx, domain.ListFilter{Category: "Security"})
	require.NoError(t, err)
	assert.Empty(t, byCategory)
}

func TestList_CategoryDoesNotGrowCache(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.catalog.Services.Create(ctx, "admin", newService("Cloud Migration", domain.StatusPublished))
	require.NoError(t, err)
	security := newService("Pen Testing", domain.StatusPublished)
	security.Category = "Security"
	_, err = f.catalog.Services.Create(ctx, "admin", security)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		_, err := f.catalog.Services.List(ctx, domain.ListFilter{Category: fmt.Sprintf("junk-%d", i)})
		require.NoError(t, err)
	}
	bySecurity, err := f.catalog.Services.List(ctx, domain.ListFilter{Category: "Security"})
	require.NoError(t, err)
	require.Len(t, bySecurity, 1)
	assert.Equal(t, "Pen Testing", bySecurity[0].Title)

	all, err := f.catalog.Services.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.Equal(t, 1, f.services.lists, "every read is served by the one cached list")
	assert.Equal(t, 1, f.tiers.Reference.Stats(ctx).Entries)
}

func TestList_BlogsIgnoreCategory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.catalog.Blogs.Create(ctx, "admin", &domain.BlogPost{
		Base:    domain.Base{Status: domain.StatusPublished},
		Title:   "Hello World",
		Content: "<p>Hi</p>",
	})
	require.NoError(t, err)

	for _, category := range []string{"a", "b", ""} {
		list, err := f.catalog.Blogs.List(ctx, domain.ListFilter{Category: category})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
	assert.Equal(t, 1, f.tiers.Reference.Stats(ctx).Entries)
}

func TestGet_HidesDraftsFromPublic(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.catalog.Services.Create(ctx, "admin", newService("Hidden", domain.StatusDraft))
	require.NoError(t, err)

	_, err = f.catalog.Services.Get(ctx, created.ID, false)
	var nf pkgError.NotFoundError
	assert.ErrorAs(t, err, &nf)

	got, err := f.catalog.Services.Get(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Hidden", got.Title)
	assert.Equal(t, "admin", got.CreatedBy)
}

func TestUpdate_PatchAuditAndFreshRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.catalog.Services.Create(ctx, "admin", newService("Old", domain.StatusPublished))
	require.NoError(t, err)
	_, err = f.catalog.Services.Get(ctx, created.ID, false)
	require.NoError(t, err)

	title := "New"
	_, err = f.catalog.Services.Update(ctx, "editor", created.ID, domain.ServicePatch{Title: &title})
	require.NoError(t, err)

	got, err := f.catalog.Services.Get(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "We do Old", got.Description, "unset patch fields are kept")

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, auditDomain.ActionUpdate, f.audit.entries[1].Action)
	assert.Equal(t, "editor", f.audit.entries[1].AdminID)
	assert.Equal(t, string(domain.KindService), f.audit.entries[1].EntityType)
}

func TestUpdate_NotFoundAndInvalid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	title := "x"
	_, err := f.catalog.Services.Update(ctx, "admin", "missing", domain.ServicePatch{Title: &title})
	var nf pkgError.NotFoundError
	assert.ErrorAs(t, err, &nf)

	created, err := f.catalog.Services.Create(ctx, "admin", newService("Valid", domain.StatusDraft))
	require.NoError(t, err)

	bad := domain.Status("live")
	_, err = f.catalog.Services.Update(ctx, "admin", created.ID, domain.ServicePatch{Status: &bad})
	var vErr pkgError.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCreate_Validation(t *testing.T) {
	f := setup(t)

	_, err := f.catalog.Jobs.Create(context.Background(), "admin", &domain.JobOpening{Title: "Go Dev"})
	var vErr pkgError.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Empty(t, f.audit.entries)
}

func TestDelete_SoftDeletesAndInvalidates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	job, err := f.catalog.Jobs.Create(ctx, "admin", &domain.JobOpening{
		Base:        domain.Base{Status: domain.StatusPublished},
		Title:       "Go Developer",
		Department:  "Engineering",
		Location:    "Remote",
		Type:        "Full-time",
		Description: "Build services",
	})
	require.NoError(t, err)

	_, err = f.catalog.PublishedJob(ctx, job.ID)
	require.NoError(t, err)

	require.NoError(t, f.catalog.Jobs.Delete(ctx, "admin", job.ID))

	_, err = f.catalog.PublishedJob(ctx, job.ID)
	var nf pkgError.NotFoundError
	assert.ErrorAs(t, err, &nf)

	assert.ErrorAs(t, f.catalog.Jobs.Delete(ctx, "admin", job.ID), &nf)

	n, err := f.catalog.Jobs.Count(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMutation_DropsDashboardFamily(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	dashKey := cache.NewKey(cache.FamilyDashboard, cache.KindStats).String()
	f.tiers.Volatile.Set(ctx, dashKey, map[string]int{"services": 0})

	_, err := f.catalog.Services.Create(ctx, "admin", newService("Any", domain.StatusDraft))
	require.NoError(t, err)

	_, ok := f.tiers.Volatile.Get(ctx, dashKey)
	assert.False(t, ok)
}

func TestBlog_SlugExcerptAndPublishedAt(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	post, err := f.catalog.Blogs.Create(ctx, "admin", &domain.BlogPost{
		Base:    domain.Base{Status: domain.StatusPublished},
		Title:   "What is DevOps?",
		Content: "<p>DevOps joins development and operations.</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "what-is-devops", post.Slug)
	assert.Equal(t, "DevOps joins development and operations.", post.Excerpt)
	assert.Equal(t, 1, post.ReadingMinutes)
	require.NotNil(t, post.PublishedAt)

	again, err := f.catalog.Blogs.Create(ctx, "admin", &domain.BlogPost{
		Title:   "What is DevOps?",
		Content: "<p>Again.</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "what-is-devops-2", again.Slug)
	assert.Nil(t, again.PublishedAt, "drafts are not stamped")

	got, err := f.catalog.Blogs.GetBySlug(ctx, "what-is-devops")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	_, err = f.catalog.Blogs.GetBySlug(ctx, "what-is-devops-2")
	var nf pkgError.NotFoundError
	assert.ErrorAs(t, err, &nf, "draft posts are hidden by slug")
}

func TestBlog_ExplicitSlugConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.catalog.Blogs.Create(ctx, "admin", &domain.BlogPost{Title: "First", Slug: "launch", Content: "<p>a</p>"})
	require.NoError(t, err)

	_, err = f.catalog.Blogs.Create(ctx, "admin", &domain.BlogPost{Title: "Second", Slug: "Launch", Content: "<p>b</p>"})
	var conflict pkgError.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestBlog_PublishingLaterStampsDate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	post, err := f.catalog.Blogs.Create(ctx, "admin", &domain.BlogPost{Title: "Later", Content: "<p>x</p>"})
	require.NoError(t, err)
	require.Nil(t, post.PublishedAt)

	published := domain.StatusPublished
	updated, err := f.catalog.Blogs.Update(ctx, "admin", post.ID, domain.BlogPatch{Status: &published})
	require.NoError(t, err)
	assert.NotNil(t, updated.PublishedAt)
	assert.Equal(t, "later", updated.Slug)

	list, err := f.catalog.Blogs.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
