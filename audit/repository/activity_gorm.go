package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jivitsolutions/jivit-site/audit/domain"
	"gorm.io/gorm"
)

type activityLogModel struct {
	ID         string    `gorm:"primaryKey"`
	AdminID    string    `gorm:"index:idx_activity_logs_admin"`
	Action     string    `gorm:"not null"`
	EntityType string    `gorm:"index:idx_activity_logs_entity,priority:1;not null"`
	EntityID   string    `gorm:"index:idx_activity_logs_entity,priority:2"`
	Details    string    `gorm:"type:text;default:'{}'"` // JSON
	CreatedAt  time.Time `gorm:"index:idx_activity_logs_created;not null"`
}

func (activityLogModel) TableName() string {
	return "activity_logs"
}

type ActivityGormRepository struct {
	db *gorm.DB
}

func NewActivityGormRepository(db *gorm.DB) *ActivityGormRepository {
	return &ActivityGormRepository{db: db}
}

func (r *ActivityGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&activityLogModel{})
}

func (r *ActivityGormRepository) Create(ctx context.Context, log *domain.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	model, err := toActivityModel(log)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *ActivityGormRepository) ListRecent(ctx context.Context, limit int) ([]*domain.ActivityLog, error) {
	var models []activityLogModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	logs := make([]*domain.ActivityLog, 0, len(models))
	for _, m := range models {
		logs = append(logs, fromActivityModel(m))
	}
	return logs, nil
}

func toActivityModel(l *domain.ActivityLog) (activityLogModel, error) {
	details := "{}"
	if l.Details != nil {
		b, err := json.Marshal(l.Details)
		if err != nil {
			return activityLogModel{}, err
		}
		details = string(b)
	}
	return activityLogModel{
		ID:         l.ID,
		AdminID:    l.AdminID,
		Action:     string(l.Action),
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Details:    details,
		CreatedAt:  l.CreatedAt,
	}, nil
}

func fromActivityModel(m activityLogModel) *domain.ActivityLog {
	l := &domain.ActivityLog{
		ID:         m.ID,
		AdminID:    m.AdminID,
		Action:     domain.Action(m.Action),
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		CreatedAt:  m.CreatedAt,
	}
	// Old rows may hold free text; keep them readable instead of failing the list.
	if err := json.Unmarshal([]byte(m.Details), &l.Details); err != nil {
		l.Details = map[string]any{"raw": m.Details}
	}
	return l
}
