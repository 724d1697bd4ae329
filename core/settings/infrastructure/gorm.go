package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jivitsolutions/jivit-site/core/settings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SiteSettingModel struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value;type:text;not null"` // JSON
	UpdatedAt time.Time `gorm:"column:updated_at"`
	UpdatedBy string    `gorm:"column:updated_by"`
}

func (SiteSettingModel) TableName() string {
	return "site_settings"
}

type SiteSettingsGormRepository struct {
	db *gorm.DB
}

func NewSiteSettingsGormRepository(db *gorm.DB) *SiteSettingsGormRepository {
	return &SiteSettingsGormRepository{db: db}
}

func (r *SiteSettingsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&SiteSettingModel{})
}

func (r *SiteSettingsGormRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var m SiteSettingModel
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSettingNotFound
		}
		return nil, err
	}
	s := fromModel(m)
	return &s, nil
}

func (r *SiteSettingsGormRepository) List(ctx context.Context) ([]domain.Setting, error) {
	var models []SiteSettingModel
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Setting, 0, len(models))
	for _, m := range models {
		out = append(out, fromModel(m))
	}
	return out, nil
}

func (r *SiteSettingsGormRepository) Upsert(ctx context.Context, s *domain.Setting) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at", "updated_by"}),
	}).Create(toModel(s)).Error
}

func (r *SiteSettingsGormRepository) InsertMissing(ctx context.Context, s *domain.Setting) (bool, error) {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(toModel(s))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SiteSettingsGormRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&SiteSettingModel{}, "key = ?", key).Error
}

func toModel(s *domain.Setting) *SiteSettingModel {
	value := string(s.Value)
	if !json.Valid(s.Value) {
		value = "null"
	}
	return &SiteSettingModel{Key: s.Key, Value: value, UpdatedAt: s.UpdatedAt, UpdatedBy: s.UpdatedBy}
}

func fromModel(m SiteSettingModel) domain.Setting {
	return domain.Setting{
		Key:       m.Key,
		Value:     json.RawMessage(m.Value),
		UpdatedAt: m.UpdatedAt,
		UpdatedBy: m.UpdatedBy,
	}
}
