package application

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/core/settings/domain"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/sirupsen/logrus"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

type SettingsService struct {
	repo  domain.ISettingsRepository
	cache *cache.Tiers
	audit auditDomain.Recorder
	now   func() time.Time
}

func NewSettingsService(repo domain.ISettingsRepository, tiers *cache.Tiers, recorder auditDomain.Recorder) *SettingsService {
	if tiers == nil {
		tiers = cache.Disabled()
	}
	if recorder == nil {
		recorder = auditDomain.NopRecorder{}
	}
	return &SettingsService{repo: repo, cache: tiers, audit: recorder, now: time.Now}
}

// GetAll folds every stored setting into a key/value map. Cached in the
// reference tier.
func (s *SettingsService) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	key := cache.NewKey(cache.FamilySettings, cache.KindAll).String()
	return cache.Fetch(ctx, s.cache.Reference, key, func(ctx context.Context) (map[string]json.RawMessage, error) {
		rows, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]json.RawMessage, len(rows))
		for _, r := range rows {
			out[r.Key] = r.Value
		}
		return out, nil
	})
}

// GetPublic returns the marketing-site view of the settings, falling back to
// defaults for keys that were never stored. Cached in the volatile tier.
func (s *SettingsService) GetPublic(ctx context.Context) (domain.PublicSettings, error) {
	key := cache.NewKey(cache.FamilySettings, cache.KindPublic).String()
	return cache.Fetch(ctx, s.cache.Volatile, key, func(ctx context.Context) (domain.PublicSettings, error) {
		all, err := s.GetAll(ctx)
		if err != nil {
			return domain.PublicSettings{}, err
		}

		var p domain.PublicSettings
		decode(all, domain.KeySiteName, &p.SiteName)
		decode(all, domain.KeyContactEmail, &p.ContactEmail)
		decode(all, domain.KeySocialLinks, &p.SocialLinks)
		decode(all, domain.KeyMaintenanceMode, &p.MaintenanceMode)
		decode(all, domain.KeyEnableApplications, &p.EnableApplications)
		return p, nil
	})
}

// decode reads key from all into dst, using the default when the stored value
// is missing or of the wrong shape.
func decode(all map[string]json.RawMessage, key string, dst any) {
	if raw, ok := all[key]; ok {
		if err := json.Unmarshal(raw, dst); err == nil {
			return
		}
		logrus.Warnf("[SETTINGS] stored value for %s is malformed, using default", key)
	}
	if def, ok := domain.Defaults[key]; ok {
		b, _ := json.Marshal(def)
		_ = json.Unmarshal(b, dst)
	}
}

func (s *SettingsService) Get(ctx context.Context, key string) (json.RawMessage, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	v, ok := all[key]
	if !ok {
		return nil, pkgError.NotFound("setting", key)
	}
	return v, nil
}

// Update stores value under key, audits the change and drops every cached
// settings read.
func (s *SettingsService) Update(ctx context.Context, actor, key string, value any) (*domain.Setting, error) {
	if err := validateSetting(key, value); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, pkgError.ValidationError("value is not valid JSON: " + err.Error())
	}

	setting := &domain.Setting{Key: key, Value: raw, UpdatedAt: s.now(), UpdatedBy: actor}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditDomain.Entry{
		AdminID:    actor,
		Action:     auditDomain.ActionUpdateSetting,
		EntityType: "setting",
		EntityID:   key,
		Details:    map[string]any{"value": json.RawMessage(raw)},
	})
	s.cache.InvalidateFamily(ctx, cache.FamilySettings)

	logrus.Infof("[SETTINGS] %s updated by %s", key, actor)
	return setting, nil
}

// SeedDefaults writes every default that is not stored yet and returns how
// many were inserted.
func (s *SettingsService) SeedDefaults(ctx context.Context) (int, error) {
	if err := s.repo.InitSchema(ctx); err != nil {
		return 0, err
	}

	inserted := 0
	for key, value := range domain.Defaults {
		raw, err := json.Marshal(value)
		if err != nil {
			return inserted, err
		}
		ok, err := s.repo.InsertMissing(ctx, &domain.Setting{Key: key, Value: raw, UpdatedAt: s.now(), UpdatedBy: "system"})
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	if inserted > 0 {
		s.cache.InvalidateFamily(ctx, cache.FamilySettings)
	}
	return inserted, nil
}

func validateSetting(key string, value any) error {
	err := validation.Validate(key,
		validation.Required,
		validation.Match(keyPattern).Error("must be lowercase snake_case"),
	)
	if err != nil {
		return pkgError.ValidationError("key: " + err.Error())
	}

	switch key {
	case domain.KeyMaintenanceMode, domain.KeyEnableApplications:
		if _, ok := value.(bool); !ok {
			return pkgError.ValidationError(key + ": must be a boolean")
		}
	case domain.KeyContactEmail, domain.KeyNotificationEmail:
		str, ok := value.(string)
		if !ok {
			return pkgError.ValidationError(key + ": must be a string")
		}
		if err := validation.Validate(str, validation.Required, is.EmailFormat); err != nil {
			return pkgError.ValidationError(key + ": " + err.Error())
		}
	case domain.KeySiteName:
		str, ok := value.(string)
		if !ok {
			return pkgError.ValidationError(key + ": must be a string")
		}
		if err := validation.Validate(str, validation.Required, validation.Length(1, 120)); err != nil {
			return pkgError.ValidationError(key + ": " + err.Error())
		}
	}
	return nil
}
