package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"github.com/jivitsolutions/jivit-site/core/database"
	"gorm.io/gorm"
)

// --- Persistence Model ---

// BaseModel is embedded by every catalog table model. It is exported because
// gorm skips unexported embedded structs.
type BaseModel struct {
	ID        string         `gorm:"primaryKey"`
	Status    string         `gorm:"index;not null;default:'draft'"`
	CreatedBy string         `gorm:"column:created_by"`
	CreatedAt time.Time      `gorm:"index;not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func toBaseModel(b *domain.Base) BaseModel {
	return BaseModel{
		ID:        b.ID,
		Status:    string(b.Status),
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (m BaseModel) toDomain() domain.Base {
	return domain.Base{
		ID:        m.ID,
		Status:    domain.Status(m.Status),
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// gormStore implements domain.Repository for one catalog table. D is the
// domain type, M its persistence model.
type gormStore[D any, M any] struct {
	db        *gorm.DB
	orderBy   string
	toModel   func(*D) *M
	fromModel func(*M) D
	meta      func(*D) *domain.Base
}

func (r *gormStore[D, M]) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(new(M))
}

func (r *gormStore[D, M]) List(ctx context.Context, filter domain.ListFilter) ([]D, error) {
	var models []M
	query := r.db.WithContext(ctx).Model(new(M))

	if !filter.IncludeInactive {
		query = query.Where("status = ?", string(domain.StatusPublished))
	}

	if err := query.Order(r.orderBy).Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]D, 0, len(models))
	for i := range models {
		out = append(out, r.fromModel(&models[i]))
	}
	return out, nil
}

func (r *gormStore[D, M]) GetByID(ctx context.Context, id string) (D, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormStore[D, M]) first(ctx context.Context, query string, args ...any) (D, error) {
	var zero D
	m := new(M)
	if err := r.db.WithContext(ctx).Where(query, args...).First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, domain.ErrNotFound
		}
		return zero, err
	}
	return r.fromModel(m), nil
}

func (r *gormStore[D, M]) Create(ctx context.Context, d *D) error {
	b := r.meta(d)
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = domain.StatusDraft
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(r.toModel(d)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *gormStore[D, M]) Update(ctx context.Context, d *D) error {
	r.meta(d).UpdatedAt = time.Now()
	model := r.toModel(d)

	result := r.db.WithContext(ctx).Model(model).
		Select("*").
		Omit("id", "created_at", "created_by", "deleted_at").
		Updates(model)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return domain.ErrDuplicateSlug
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *gormStore[D, M]) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(new(M), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *gormStore[D, M]) Count(ctx context.Context, onlyPublished bool) (int64, error) {
	var n int64
	query := r.db.WithContext(ctx).Model(new(M))
	if onlyPublished {
		query = query.Where("status = ?", string(domain.StatusPublished))
	}
	err := query.Count(&n).Error
	return n, err
}
