package repository

import (
	"context"
	"time"

	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"gorm.io/gorm"
)

// --- services ---

type serviceModel struct {
	BaseModel
	Title       string `gorm:"not null"`
	Subtitle    string
	Description string   `gorm:"type:text"`
	Benefits    []string `gorm:"serializer:json;type:text"`
	ImageURL    string   `gorm:"column:image_url"`
	IconName    string
	Category    string `gorm:"index"`
}

func (serviceModel) TableName() string { return "services" }

type ServiceGormRepository struct {
	gormStore[domain.ServiceOffering, serviceModel]
}

func NewServiceGormRepository(db *gorm.DB) *ServiceGormRepository {
	return &ServiceGormRepository{gormStore[domain.ServiceOffering, serviceModel]{
		db:      db,
		orderBy: "created_at DESC",
		meta:    func(d *domain.ServiceOffering) *domain.Base { return d.Meta() },
		toModel: func(d *domain.ServiceOffering) *serviceModel {
			return &serviceModel{
				BaseModel:   toBaseModel(&d.Base),
				Title:       d.Title,
				Subtitle:    d.Subtitle,
				Description: d.Description,
				Benefits:    nonNil(d.Benefits),
				ImageURL:    d.ImageURL,
				IconName:    d.IconName,
				Category:    d.Category,
			}
		},
		fromModel: func(m *serviceModel) domain.ServiceOffering {
			return domain.ServiceOffering{
				Base:        m.BaseModel.toDomain(),
				Title:       m.Title,
				Subtitle:    m.Subtitle,
				Description: m.Description,
				Benefits:    nonNil(m.Benefits),
				ImageURL:    m.ImageURL,
				IconName:    m.IconName,
				Category:    m.Category,
			}
		},
	}}
}

// --- job openings ---

type jobOpeningModel struct {
	BaseModel
	Title        string `gorm:"not null"`
	Department   string `gorm:"index"`
	Location     string
	Type         string
	Description  string   `gorm:"type:text"`
	Requirements []string `gorm:"serializer:json;type:text"`
}

func (jobOpeningModel) TableName() string { return "job_openings" }

type JobGormRepository struct {
	gormStore[domain.JobOpening, jobOpeningModel]
}

func NewJobGormRepository(db *gorm.DB) *JobGormRepository {
	return &JobGormRepository{gormStore[domain.JobOpening, jobOpeningModel]{
		db:      db,
		orderBy: "created_at DESC",
		meta:    func(d *domain.JobOpening) *domain.Base { return d.Meta() },
		toModel: func(d *domain.JobOpening) *jobOpeningModel {
			return &jobOpeningModel{
				BaseModel:    toBaseModel(&d.Base),
				Title:        d.Title,
				Department:   d.Department,
				Location:     d.Location,
				Type:         d.Type,
				Description:  d.Description,
				Requirements: nonNil(d.Requirements),
			}
		},
		fromModel: func(m *jobOpeningModel) domain.JobOpening {
			return domain.JobOpening{
				Base:         m.BaseModel.toDomain(),
				Title:        m.Title,
				Department:   m.Department,
				Location:     m.Location,
				Type:         m.Type,
				Description:  m.Description,
				Requirements: nonNil(m.Requirements),
			}
		},
	}}
}

// --- student programs ---

type studentProgramModel struct {
	BaseModel
	Title        string `gorm:"not null"`
	Subtitle     string
	Category     string `gorm:"index"`
	Department   string
	Type         string
	Location     string
	Description  string   `gorm:"type:text"`
	Requirements []string `gorm:"serializer:json;type:text"`
	ImageURL     string   `gorm:"column:image_url"`
}

func (studentProgramModel) TableName() string { return "student_programs" }

type ProgramGormRepository struct {
	gormStore[domain.StudentProgram, studentProgramModel]
}

func NewProgramGormRepository(db *gorm.DB) *ProgramGormRepository {
	return &ProgramGormRepository{gormStore[domain.StudentProgram, studentProgramModel]{
		db:      db,
		orderBy: "created_at DESC",
		meta:    func(d *domain.StudentProgram) *domain.Base { return d.Meta() },
		toModel: func(d *domain.StudentProgram) *studentProgramModel {
			return &studentProgramModel{
				BaseModel:    toBaseModel(&d.Base),
				Title:        d.Title,
				Subtitle:     d.Subtitle,
				Category:     d.Category,
				Department:   d.Department,
				Type:         d.Type,
				Location:     d.Location,
				Description:  d.Description,
				Requirements: nonNil(d.Requirements),
				ImageURL:     d.ImageURL,
			}
		},
		fromModel: func(m *studentProgramModel) domain.StudentProgram {
			return domain.StudentProgram{
				Base:         m.BaseModel.toDomain(),
				Title:        m.Title,
				Subtitle:     m.Subtitle,
				Category:     m.Category,
				Department:   m.Department,
				Type:         m.Type,
				Location:     m.Location,
				Description:  m.Description,
				Requirements: nonNil(m.Requirements),
				ImageURL:     m.ImageURL,
			}
		},
	}}
}

// --- blogs ---

type blogModel struct {
	BaseModel
	Title          string `gorm:"not null"`
	Slug           string `gorm:"uniqueIndex;not null"`
	Excerpt        string `gorm:"type:text"`
	Content        string `gorm:"type:text"`
	CoverImage     string
	Author         string
	Tags           []string   `gorm:"serializer:json;type:text"`
	PublishedAt    *time.Time `gorm:"index"`
	ReadingMinutes int
}

func (blogModel) TableName() string { return "blogs" }

type BlogGormRepository struct {
	gormStore[domain.BlogPost, blogModel]
}

func NewBlogGormRepository(db *gorm.DB) *BlogGormRepository {
	return &BlogGormRepository{gormStore[domain.BlogPost, blogModel]{
		db: db,
		// Drafts have no published_at; they sort after every published post.
		orderBy: "published_at IS NULL, published_at DESC, created_at DESC",
		meta:    func(d *domain.BlogPost) *domain.Base { return d.Meta() },
		toModel: func(d *domain.BlogPost) *blogModel {
			return &blogModel{
				BaseModel:      toBaseModel(&d.Base),
				Title:          d.Title,
				Slug:           d.Slug,
				Excerpt:        d.Excerpt,
				Content:        d.Content,
				CoverImage:     d.CoverImage,
				Author:         d.Author,
				Tags:           nonNil(d.Tags),
				PublishedAt:    d.PublishedAt,
				ReadingMinutes: d.ReadingMinutes,
			}
		},
		fromModel: func(m *blogModel) domain.BlogPost {
			return domain.BlogPost{
				Base:           m.BaseModel.toDomain(),
				Title:          m.Title,
				Slug:           m.Slug,
				Excerpt:        m.Excerpt,
				Content:        m.Content,
				CoverImage:     m.CoverImage,
				Author:         m.Author,
				Tags:           nonNil(m.Tags),
				PublishedAt:    m.PublishedAt,
				ReadingMinutes: m.ReadingMinutes,
			}
		},
	}}
}

func (r *BlogGormRepository) GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *BlogGormRepository) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int64
	query := r.db.WithContext(ctx).Unscoped().Model(&blogModel{}).Where("slug = ?", slug)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
