package domain

import (
	"context"
	"errors"
	"time"
)

type Action string

const (
	ActionCreate        Action = "CREATE"
	ActionUpdate        Action = "UPDATE"
	ActionDelete        Action = "DELETE"
	ActionUpdateStatus  Action = "UPDATE_STATUS"
	ActionUpdateSetting Action = "UPDATE_SETTING"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 200
)

var ErrInvalidEntry = errors.New("activity entry requires action and entity type")

// ActivityLog is one row of the admin audit trail.
type ActivityLog struct {
	ID         string         `json:"id"`
	AdminID    string         `json:"admin_id"`
	Action     Action         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
	Ago        string         `json:"ago,omitempty"`
}

// Entry is what a mutation hands to the recorder. Details may be any value
// that marshals to a JSON object.
type Entry struct {
	AdminID    string
	Action     Action
	EntityType string
	EntityID   string
	Details    any
}

type Repository interface {
	InitSchema(ctx context.Context) error
	Create(ctx context.Context, log *ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]*ActivityLog, error)
}

// Recorder writes audit entries without making the caller wait.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// NopRecorder drops every entry.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) {}
