package domain

import (
	"context"
	"errors"
	"time"
)

type SourceType string

const (
	SourceJob                SourceType = "job"
	SourceStudentProgram     SourceType = "student_program"
	SourceGeneralApplication SourceType = "general_application"
	SourceServiceInquiry     SourceType = "service_inquiry"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusReviewing Status = "reviewing"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusReviewing, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

var ErrApplicationNotFound = errors.New("application not found")

// Application is a submitted lead: a job or program application, a general
// application or a service inquiry.
type Application struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone"`
	Message       string     `json:"message"`
	SourceType    SourceType `json:"source_type"`
	SourceID      *string    `json:"source_id"`
	Status        Status     `json:"status"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Filter struct {
	Search     string
	Status     Status
	SourceType SourceType
	Limit      int
}

// Inbox is the admin view of the applications with its counters.
type Inbox struct {
	Applications []Application `json:"applications"`
	Total        int64         `json:"total"`
	Pending      int64         `json:"pending"`
	Accepted     int64         `json:"accepted"`
}

type Repository interface {
	InitSchema(ctx context.Context) error
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	List(ctx context.Context, filter Filter) ([]Application, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
