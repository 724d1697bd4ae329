package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/jivitsolutions/jivit-site/pkg/richtext"
	"github.com/jivitsolutions/jivit-site/pkg/utils"
)

const maxSlugAttempts = 20

type BlogService struct {
	*Resource[domain.BlogPost, *domain.BlogPost]
	blogs domain.BlogRepository
	now   func() time.Time
}

func NewBlogService(repo domain.BlogRepository, tiers *cache.Tiers, recorder auditDomain.Recorder) *BlogService {
	s := &BlogService{
		Resource: NewResource[domain.BlogPost, *domain.BlogPost](domain.KindBlog, cache.FamilyBlogs, repo, tiers, recorder),
		blogs:    repo,
		now:      time.Now,
	}
	s.Resource.prepare = s.prepare
	return s
}

// GetBySlug returns a published post.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	key := cache.NewKey(cache.FamilyBlogs, cache.KindSlug, slug).String()

	post, err := cache.Fetch(ctx, s.cache.Reference, key, func(ctx context.Context) (domain.BlogPost, error) {
		return s.blogs.GetBySlug(ctx, slug)
	})
	if err != nil {
		return post, s.mapError(err, slug)
	}
	if !post.Published() {
		return domain.BlogPost{}, s.notFound(slug)
	}
	return post, nil
}

func (s *BlogService) prepare(ctx context.Context, b *domain.BlogPost, isNew bool) error {
	b.Title = strings.TrimSpace(b.Title)

	if b.Slug == "" {
		slug, err := s.uniqueSlug(ctx, utils.Slugify(b.Title), b.ID)
		if err != nil {
			return err
		}
		b.Slug = slug
	} else {
		b.Slug = utils.Slugify(b.Slug)
		taken, err := s.blogs.SlugTaken(ctx, b.Slug, b.ID)
		if err != nil {
			return err
		}
		if taken {
			return pkgError.ConflictError(fmt.Sprintf("slug %q is already in use", b.Slug))
		}
	}

	if b.Excerpt == "" {
		b.Excerpt = richtext.Excerpt(b.Content, richtext.DefaultExcerptLength)
	}
	b.ReadingMinutes = richtext.ReadingMinutes(b.Content)

	if b.Status == domain.StatusPublished && b.PublishedAt == nil {
		t := s.now()
		b.PublishedAt = &t
	}
	return nil
}

// uniqueSlug appends -2, -3... to base until it is free.
func (s *BlogService) uniqueSlug(ctx context.Context, base, exceptID string) (string, error) {
	if base == "" {
		return "", nil
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := s.blogs.SlugTaken(ctx, candidate, exceptID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.New().String()[:8], nil
}
