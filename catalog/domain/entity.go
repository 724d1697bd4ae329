package domain

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

var (
	ErrNotFound      = errors.New("catalog item not found")
	ErrDuplicateSlug = errors.New("slug already in use")
)

// Base holds the columns every catalog table shares.
type Base struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) Meta() *Base { return b }

func (b *Base) Published() bool { return b.Status == StatusPublished }

// Entity is implemented by pointers to the catalog types.
type Entity interface {
	Meta() *Base
	// Label is the human readable name used in audit entries.
	Label() string
	Validate() error
}

// Patch is a partial update decoded from an admin request. It doubles as the
// audit details of the change.
type Patch[D any] interface {
	ApplyTo(d *D)
}

// Categorized is implemented by the types a public list can be narrowed by.
type Categorized interface {
	CategoryName() string
}

// ListFilter narrows a list. Repositories only honour IncludeInactive;
// Category is matched against cached lists in memory.
type ListFilter struct {
	IncludeInactive bool
	Category        string
}

type Repository[D any] interface {
	InitSchema(ctx context.Context) error
	List(ctx context.Context, filter ListFilter) ([]D, error)
	GetByID(ctx context.Context, id string) (D, error)
	Create(ctx context.Context, d *D) error
	Update(ctx context.Context, d *D) error
	SoftDelete(ctx context.Context, id string) error
	Count(ctx context.Context, onlyPublished bool) (int64, error)
}

type BlogRepository interface {
	Repository[BlogPost]
	GetBySlug(ctx context.Context, slug string) (BlogPost, error)
	// SlugTaken also looks at soft-deleted rows, which still hold the unique index.
	SlugTaken(ctx context.Context, slug, exceptID string) (bool, error)
}

// Kind names a catalog resource in audit entries and errors.
type Kind string

const (
	KindService Kind = "service"
	KindJob     Kind = "job_opening"
	KindProgram Kind = "student_program"
	KindBlog    Kind = "blog"
)
