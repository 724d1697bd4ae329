package application

import (
	"context"
	"errors"
	"mime/multipart"

	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	catalogDomain "github.com/jivitsolutions/jivit-site/catalog/domain"
	settingsDomain "github.com/jivitsolutions/jivit-site/core/settings/domain"
	"github.com/jivitsolutions/jivit-site/leads/domain"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/jivitsolutions/jivit-site/pkg/jobpool"
	"github.com/jivitsolutions/jivit-site/pkg/media"
	"github.com/sirupsen/logrus"
)

const EventLeadCreated = "lead.created"

type SourceChecker interface {
	PublishedJob(ctx context.Context, id string) (catalogDomain.JobOpening, error)
	PublishedProgram(ctx context.Context, id string) (catalogDomain.StudentProgram, error)
}

type SettingsReader interface {
	GetPublic(ctx context.Context) (settingsDomain.PublicSettings, error)
}

type Uploader interface {
	SaveDocument(file *multipart.FileHeader, kind string) (media.Stored, error)
}

type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, event string, payload any) error
}

type Dispatcher interface {
	TryDispatch(job jobpool.Job) bool
}

// Options holds the collaborators of the leads service. Any of them may be
// nil; the matching feature is then skipped.
type Options struct {
	Sources  SourceChecker
	Settings SettingsReader
	Uploads  Uploader
	Notifier Notifier
	Pool     Dispatcher
	Audit    auditDomain.Recorder
	Cache    *cache.Tiers
}

type Service struct {
	repo domain.Repository
	opts Options
}

func NewService(repo domain.Repository, opts Options) *Service {
	if opts.Audit == nil {
		opts.Audit = auditDomain.NopRecorder{}
	}
	if opts.Cache == nil {
		opts.Cache = cache.Disabled()
	}
	return &Service{repo: repo, opts: opts}
}

// ValidateStep validates one step of the application wizard.
func (s *Service) ValidateStep(step int, form domain.JobApplicationForm) error {
	if err := form.ValidateStep(step); err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

// SubmitJobApplication stores a job, program or general application. resume
// may be nil when the file name was already given in the form.
func (s *Service) SubmitJobApplication(ctx context.Context, form domain.JobApplicationForm, resume *multipart.FileHeader) (domain.Application, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return domain.Application{}, err
	}
	if resume != nil {
		form.ResumeName = resume.Filename
	}
	if err := form.ValidateStep(domain.StepReview); err != nil {
		return domain.Application{}, pkgError.ValidationError(err.Error())
	}
	if err := s.checkSource(ctx, form.SourceType, form.SourceID); err != nil {
		return domain.Application{}, err
	}

	app := form.ToApplication()
	if err := s.attach(&app, resume, media.KindResumes); err != nil {
		return domain.Application{}, err
	}
	return s.store(ctx, app)
}

func (s *Service) SubmitServiceInquiry(ctx context.Context, form domain.ServiceInquiryForm, document *multipart.FileHeader) (domain.Application, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return domain.Application{}, err
	}
	if document != nil {
		form.DocumentName = document.Filename
	}
	if err := form.Validate(); err != nil {
		return domain.Application{}, pkgError.ValidationError(err.Error())
	}

	app := form.ToApplication()
	if err := s.attach(&app, document, media.KindDocuments); err != nil {
		return domain.Application{}, err
	}
	return s.store(ctx, app)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrApplicationNotFound) {
		return nil, pkgError.NotFound("application", id)
	}
	return app, err
}

// Inbox lists applications, newest first, with the inbox counters. It always
// reads the database.
func (s *Service) Inbox(ctx context.Context, filter domain.Filter) (domain.Inbox, error) {
	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return domain.Inbox{}, err
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return domain.Inbox{}, err
	}

	inbox := domain.Inbox{Applications: apps}
	for status, n := range counts {
		inbox.Total += n
		switch status {
		case domain.StatusNew, domain.StatusReviewing:
			inbox.Pending += n
		case domain.StatusAccepted:
			inbox.Accepted += n
		}
	}
	return inbox, nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, actor, id string, status domain.Status) (*domain.Application, error) {
	if !status.Valid() {
		return nil, pkgError.ValidationError("status must be new, reviewing, accepted or rejected")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return nil, pkgError.NotFound("application", id)
		}
		return nil, err
	}

	s.opts.Audit.Record(ctx, auditDomain.Entry{
		AdminID:    actor,
		Action:     auditDomain.ActionUpdateStatus,
		EntityType: "applications",
		EntityID:   id,
		Details:    map[string]any{"status": status},
	})
	s.opts.Cache.InvalidateFamily(ctx, cache.FamilyDashboard)

	return s.Get(ctx, id)
}

func (s *Service) ensureOpen(ctx context.Context) error {
	if s.opts.Settings == nil {
		return nil
	}
	pub, err := s.opts.Settings.GetPublic(ctx)
	if err != nil {
		logrus.WithError(err).Warn("[LEADS] settings unavailable, accepting submission")
		return nil
	}
	if pub.MaintenanceMode {
		return pkgError.UnavailableError("the site is under maintenance, please try again later")
	}
	if !pub.EnableApplications {
		return pkgError.UnavailableError("applications are currently closed")
	}
	return nil
}

func (s *Service) checkSource(ctx context.Context, source domain.SourceType, id string) error {
	if s.opts.Sources == nil {
		return nil
	}

	var err error
	switch source {
	case domain.SourceJob:
		_, err = s.opts.Sources.PublishedJob(ctx, id)
	case domain.SourceStudentProgram:
		_, err = s.opts.Sources.PublishedProgram(ctx, id)
	default:
		return nil
	}

	var notFound pkgError.NotFoundError
	if errors.As(err, &notFound) {
		return pkgError.ValidationError("source_id: " + string(source) + " " + id + " is not open for applications")
	}
	return err
}

func (s *Service) attach(app *domain.Application, file *multipart.FileHeader, kind string) error {
	if file == nil || s.opts.Uploads == nil {
		return nil
	}
	stored, err := s.opts.Uploads.SaveDocument(file, kind)
	if err != nil {
		return err
	}
	app.AttachmentURL = stored.URL
	return nil
}

func (s *Service) store(ctx context.Context, app domain.Application) (domain.Application, error) {
	if err := s.repo.Create(ctx, &app); err != nil {
		return domain.Application{}, err
	}
	logrus.Infof("[LEADS] new %s application %s", app.SourceType, app.ID)

	s.opts.Cache.InvalidateFamily(ctx, cache.FamilyDashboard)
	s.notify(app)
	return app, nil
}

func (s *Service) notify(app domain.Application) {
	if s.opts.Notifier == nil || !s.opts.Notifier.Enabled() || s.opts.Pool == nil {
		return
	}
	ok := s.opts.Pool.TryDispatch(jobpool.Job{
		Kind:      "webhook",
		Partition: "applications",
		Key:       app.ID,
		Handler: func(ctx context.Context) error {
			return s.opts.Notifier.Send(ctx, EventLeadCreated, app)
		},
	})
	if !ok {
		logrus.Warnf("[LEADS] webhook for application %s dropped, pool is full", app.ID)
	}
}
