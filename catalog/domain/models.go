package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var statusRule = validation.By(func(v any) error {
	if s, ok := v.(Status); ok && !s.Valid() {
		return validation.NewError("validation_status", "must be draft, published or archived")
	}
	return nil
})

type ServiceOffering struct {
	Base
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	ImageURL    string   `json:"image_url"`
	IconName    string   `json:"icon_name"`
	Category    string   `json:"category"`
}

func (s *ServiceOffering) Label() string { return s.Title }

func (s *ServiceOffering) CategoryName() string { return s.Category }

func (s *ServiceOffering) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Title, validation.Required, validation.Length(2, 160)),
		validation.Field(&s.Description, validation.Required),
		validation.Field(&s.Category, validation.Required, validation.Length(1, 80)),
		validation.Field(&s.ImageURL, is.RequestURI),
		validation.Field(&s.Status, statusRule),
	)
}

type JobOpening struct {
	Base
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
}

func (j *JobOpening) Label() string { return j.Title }

func (j *JobOpening) CategoryName() string { return j.Department }

func (j *JobOpening) Validate() error {
	return validation.ValidateStruct(j,
		validation.Field(&j.Title, validation.Required, validation.Length(2, 160)),
		validation.Field(&j.Department, validation.Required),
		validation.Field(&j.Location, validation.Required),
		validation.Field(&j.Type, validation.Required, validation.Length(1, 40)),
		validation.Field(&j.Description, validation.Required),
		validation.Field(&j.Status, statusRule),
	)
}

type StudentProgram struct {
	Base
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	Category     string   `json:"category"`
	Department   string   `json:"department"`
	Type         string   `json:"type"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	ImageURL     string   `json:"image_url"`
}

func (p *StudentProgram) Label() string { return p.Title }

func (p *StudentProgram) CategoryName() string { return p.Category }

func (p *StudentProgram) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required, validation.Length(2, 160)),
		validation.Field(&p.Category, validation.Required),
		validation.Field(&p.Description, validation.Required),
		validation.Field(&p.ImageURL, is.RequestURI),
		validation.Field(&p.Status, statusRule),
	)
}

type BlogPost struct {
	Base
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Excerpt        string     `json:"excerpt"`
	Content        string     `json:"content"`
	CoverImage     string     `json:"cover_image"`
	Author         string     `json:"author"`
	Tags           []string   `json:"tags"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	ReadingMinutes int        `json:"reading_minutes"`
}

func (b *BlogPost) Label() string { return b.Title }

func (b *BlogPost) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Title, validation.Required, validation.Length(2, 200)),
		validation.Field(&b.Slug, validation.Required, validation.Length(1, 200)),
		validation.Field(&b.Content, validation.Required),
		validation.Field(&b.CoverImage, is.RequestURI),
		validation.Field(&b.Status, statusRule),
	)
}
