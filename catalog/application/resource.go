package application

import (
	"context"
	"errors"

	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/sirupsen/logrus"
)

// Resource serves one catalog table. Reads go through the reference cache
// tier. Every mutation is audited and drops the resource's cached family.
type Resource[D any, P interface {
	*D
	domain.Entity
}] struct {
	kind    domain.Kind
	family  cache.Family
	repo    domain.Repository[D]
	cache   *cache.Tiers
	audit   auditDomain.Recorder
	prepare func(ctx context.Context, d *D, isNew bool) error
}

func NewResource[D any, P interface {
	*D
	domain.Entity
}](kind domain.Kind, family cache.Family, repo domain.Repository[D], tiers *cache.Tiers, recorder auditDomain.Recorder) *Resource[D, P] {
	if tiers == nil {
		tiers = cache.Disabled()
	}
	if recorder == nil {
		recorder = auditDomain.NopRecorder{}
	}
	return &Resource[D, P]{
		kind:   kind,
		family: family,
		repo:   repo,
		cache:  tiers,
		audit:  recorder,
	}
}

func (r *Resource[D, P]) Kind() domain.Kind { return r.kind }

// List returns published items, or every non-deleted item when
// filter.IncludeInactive is set. Only the two unfiltered lists are cached;
// a category narrows the cached list so request input never creates keys.
// Resources without categories ignore it.
func (r *Resource[D, P]) List(ctx context.Context, filter domain.ListFilter) ([]D, error) {
	key := cache.NewKey(r.family, cache.KindList, filter.IncludeInactive).String()

	items, err := cache.Fetch(ctx, r.cache.Reference, key, func(ctx context.Context) ([]D, error) {
		return r.repo.List(ctx, domain.ListFilter{IncludeInactive: filter.IncludeInactive})
	})
	if err != nil || filter.Category == "" {
		return items, err
	}
	return byCategory[D, P](items, filter.Category), nil
}

func byCategory[D any, P interface {
	*D
	domain.Entity
}](items []D, category string) []D {
	out := make([]D, 0, len(items))
	for i := range items {
		c, ok := any(P(&items[i])).(domain.Categorized)
		if !ok {
			return items
		}
		if c.CategoryName() == category {
			out = append(out, items[i])
		}
	}
	return out
}

// Get returns one item. Unless includeInactive is set, anything not published
// is reported as not found.
func (r *Resource[D, P]) Get(ctx context.Context, id string, includeInactive bool) (D, error) {
	key := cache.NewKey(r.family, cache.KindDetail, id).String()

	d, err := cache.Fetch(ctx, r.cache.Reference, key, func(ctx context.Context) (D, error) {
		return r.repo.GetByID(ctx, id)
	})
	if err != nil {
		return d, r.mapError(err, id)
	}
	if !includeInactive && !P(&d).Meta().Published() {
		var zero D
		return zero, r.notFound(id)
	}
	return d, nil
}

func (r *Resource[D, P]) Count(ctx context.Context, onlyPublished bool) (int64, error) {
	return r.repo.Count(ctx, onlyPublished)
}

func (r *Resource[D, P]) Create(ctx context.Context, actor string, d *D) (D, error) {
	meta := P(d).Meta()
	meta.ID = ""
	meta.CreatedBy = actor
	if meta.Status == "" {
		meta.Status = domain.StatusDraft
	}

	if r.prepare != nil {
		if err := r.prepare(ctx, d, true); err != nil {
			return *d, err
		}
	}
	if err := P(d).Validate(); err != nil {
		return *d, pkgError.ValidationError(err.Error())
	}
	if err := r.repo.Create(ctx, d); err != nil {
		return *d, r.mapError(err, meta.ID)
	}

	r.audit.Record(ctx, auditDomain.Entry{
		AdminID:    actor,
		Action:     auditDomain.ActionCreate,
		EntityType: string(r.kind),
		EntityID:   meta.ID,
		Details:    map[string]any{"title": P(d).Label(), "status": meta.Status},
	})
	r.invalidate(ctx)

	logrus.Infof("[CATALOG] %s %s created by %s", r.kind, meta.ID, actor)
	return *d, nil
}

// Update applies patch to the stored item. The item is read from the
// repository, never from the cache.
func (r *Resource[D, P]) Update(ctx context.Context, actor, id string, patch domain.Patch[D]) (D, error) {
	d, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return d, r.mapError(err, id)
	}

	patch.ApplyTo(&d)
	if r.prepare != nil {
		if err := r.prepare(ctx, &d, false); err != nil {
			return d, err
		}
	}
	if err := P(&d).Validate(); err != nil {
		return d, pkgError.ValidationError(err.Error())
	}
	if err := r.repo.Update(ctx, &d); err != nil {
		return d, r.mapError(err, id)
	}

	r.audit.Record(ctx, auditDomain.Entry{
		AdminID:    actor,
		Action:     auditDomain.ActionUpdate,
		EntityType: string(r.kind),
		EntityID:   id,
		Details:    patch,
	})
	r.invalidate(ctx)

	logrus.Infof("[CATALOG] %s %s updated by %s", r.kind, id, actor)
	return d, nil
}

func (r *Resource[D, P]) Delete(ctx context.Context, actor, id string) error {
	if err := r.repo.SoftDelete(ctx, id); err != nil {
		return r.mapError(err, id)
	}

	r.audit.Record(ctx, auditDomain.Entry{
		AdminID:    actor,
		Action:     auditDomain.ActionDelete,
		EntityType: string(r.kind),
		EntityID:   id,
	})
	r.invalidate(ctx)

	logrus.Infof("[CATALOG] %s %s deleted by %s", r.kind, id, actor)
	return nil
}

// invalidate drops every cached read of this resource and the dashboard
// counters that summarize it.
func (r *Resource[D, P]) invalidate(ctx context.Context) {
	r.cache.InvalidateFamily(ctx, r.family, cache.FamilyDashboard)
}

func (r *Resource[D, P]) notFound(id string) error {
	return pkgError.NotFound(string(r.kind), id)
}

func (r *Resource[D, P]) mapError(err error, id string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return r.notFound(id)
	case errors.Is(err, domain.ErrDuplicateSlug):
		return pkgError.ConflictError(err.Error())
	}
	return err
}
