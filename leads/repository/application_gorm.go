package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jivitsolutions/jivit-site/leads/domain"
	"gorm.io/gorm"
)

const defaultListLimit = 500

type applicationModel struct {
	ID            string `gorm:"primaryKey"`
	FirstName     string `gorm:"not null"`
	LastName      string `gorm:"not null"`
	Email         string `gorm:"index:idx_applications_email;not null"`
	Phone         *string
	Message       string  `gorm:"type:text"`
	SourceType    string  `gorm:"index:idx_applications_source,priority:1;not null"`
	SourceID      *string `gorm:"index:idx_applications_source,priority:2"`
	Status        string  `gorm:"index:idx_applications_status;not null;default:'new'"`
	AttachmentURL string
	CreatedAt     time.Time `gorm:"index;not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (applicationModel) TableName() string {
	return "applications"
}

type ApplicationGormRepository struct {
	db *gorm.DB
}

func NewApplicationGormRepository(db *gorm.DB) *ApplicationGormRepository {
	return &ApplicationGormRepository{db: db}
}

func (r *ApplicationGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&applicationModel{})
}

func (r *ApplicationGormRepository) Create(ctx context.Context, app *domain.Application) error {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	if app.Status == "" {
		app.Status = domain.StatusNew
	}
	now := time.Now()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	model := toModel(app)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ApplicationGormRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	var m applicationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	app := fromModel(m)
	return &app, nil
}

func (r *ApplicationGormRepository) List(ctx context.Context, filter domain.Filter) ([]domain.Application, error) {
	var models []applicationModel
	query := r.db.WithContext(ctx).Model(&applicationModel{})

	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.SourceType != "" {
		query = query.Where("source_type = ?", string(filter.SourceType))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where(
			"(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(source_type) LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	apps := make([]domain.Application, 0, len(models))
	for _, m := range models {
		apps = append(apps, fromModel(m))
	}
	return apps, nil
}

func (r *ApplicationGormRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	result := r.db.WithContext(ctx).Model(&applicationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationGormRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&applicationModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[domain.Status]int64, len(rows))
	for _, row := range rows {
		out[domain.Status(row.Status)] = row.Count
	}
	return out, nil
}

func toModel(a *domain.Application) applicationModel {
	return applicationModel{
		ID:            a.ID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		Phone:         a.Phone,
		Message:       a.Message,
		SourceType:    string(a.SourceType),
		SourceID:      a.SourceID,
		Status:        string(a.Status),
		AttachmentURL: a.AttachmentURL,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func fromModel(m applicationModel) domain.Application {
	return domain.Application{
		ID:            m.ID,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Email:         m.Email,
		Phone:         m.Phone,
		Message:       m.Message,
		SourceType:    domain.SourceType(m.SourceType),
		SourceID:      m.SourceID,
		Status:        domain.Status(m.Status),
		AttachmentURL: m.AttachmentURL,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
