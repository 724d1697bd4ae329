package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Setting is one site-wide value stored as JSON in the database.
type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy string          `json:"updated_by,omitempty"`
}

var ErrSettingNotFound = errors.New("setting not found")

// ISettingsRepository defines the contract for persisting site settings.
type ISettingsRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
	// InsertMissing creates the setting only when the key does not exist yet.
	InsertMissing(ctx context.Context, setting *Setting) (bool, error)
	Delete(ctx context.Context, key string) error

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

// Common Keys defined in the system
const (
	KeySiteName           = "site_name"
	KeyContactEmail       = "contact_email"
	KeyNotificationEmail  = "notification_email"
	KeyMaintenanceMode    = "maintenance_mode"
	KeyEnableApplications = "enable_applications"
	KeySocialLinks        = "social_links"
)

// Defaults are seeded by the migrate command.
var Defaults = map[string]any{
	KeySiteName:           "JivIT Solutions",
	KeyContactEmail:       "contact@jivitsolutions.com",
	KeyNotificationEmail:  "hr@jivitsolutions.com",
	KeyMaintenanceMode:    false,
	KeyEnableApplications: true,
	KeySocialLinks: map[string]string{
		"linkedin":  "https://www.linkedin.com/company/jivit-solutions",
		"twitter":   "",
		"instagram": "",
	},
}

// PublicSettings is the subset of settings the marketing site may read.
type PublicSettings struct {
	SiteName           string            `json:"site_name"`
	ContactEmail       string            `json:"contact_email"`
	SocialLinks        map[string]string `json:"social_links"`
	MaintenanceMode    bool              `json:"maintenance_mode"`
	EnableApplications bool              `json:"enable_applications"`
}

// AcceptsApplications reports whether the public forms may be submitted.
func (p PublicSettings) AcceptsApplications() bool {
	return p.EnableApplications && !p.MaintenanceMode
}
