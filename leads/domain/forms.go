package domain

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	StepBasics     = 1
	StepExperience = 2
	StepCompliance = 3
	StepReview     = 4
	TotalSteps     = StepReview

	notAvailable = "N/A"
)

// JobApplicationForm is the state of the four step application wizard.
type JobApplicationForm struct {
	Name              string     `json:"name" form:"name"`
	Email             string     `json:"email" form:"email"`
	Phone             string     `json:"phone" form:"phone"`
	ResumeName        string     `json:"resume_name" form:"resume_name"`
	Expertise         string     `json:"expertise" form:"expertise"`
	Experience        string     `json:"experience" form:"experience"`
	LinkedIn          string     `json:"linkedin" form:"linkedin"`
	Portfolio         string     `json:"portfolio" form:"portfolio"`
	WorkAuthorization string     `json:"work_authorization" form:"work_authorization"`
	ConsentGiven      bool       `json:"consent_given" form:"consent_given"`
	SourceType        SourceType `json:"source_type" form:"source_type"`
	SourceID          string     `json:"source_id" form:"source_id"`
}

var mustConsent = validation.By(func(v any) error {
	if given, _ := v.(bool); !given {
		return validation.NewError("validation_consent", "must be given")
	}
	return nil
})

// ValidateStep checks the fields a wizard step owns. The review step checks
// every earlier step.
func (f *JobApplicationForm) ValidateStep(step int) error {
	switch step {
	case StepBasics:
		return validation.ValidateStruct(f,
			validation.Field(&f.Name, validation.Required, validation.Length(1, 120)),
			validation.Field(&f.Email, validation.Required, is.EmailFormat),
			validation.Field(&f.ResumeName, validation.Required),
			validation.Field(&f.LinkedIn, is.URL),
			validation.Field(&f.Portfolio, is.URL),
		)
	case StepExperience:
		return validation.ValidateStruct(f,
			validation.Field(&f.Expertise, validation.Required),
			validation.Field(&f.Experience, validation.Required),
		)
	case StepCompliance:
		return validation.ValidateStruct(f,
			validation.Field(&f.WorkAuthorization, validation.Required),
			validation.Field(&f.ConsentGiven, mustConsent),
		)
	case StepReview:
		for s := StepBasics; s < StepReview; s++ {
			if err := f.ValidateStep(s); err != nil {
				return err
			}
		}
		return validation.ValidateStruct(f,
			validation.Field(&f.SourceType, validation.Required, validation.In(SourceJob, SourceStudentProgram, SourceGeneralApplication)),
			validation.Field(&f.SourceID, validation.When(f.SourceType != SourceGeneralApplication, validation.Required)),
		)
	}
	return validation.NewError("validation_step", fmt.Sprintf("step must be between 1 and %d", TotalSteps))
}

// ToApplication builds the stored lead, composing the message exactly as the
// public form always did.
func (f *JobApplicationForm) ToApplication() Application {
	first, last := SplitName(f.Name)

	msg := []string{
		"Expertise: " + f.Expertise,
		"Experience: " + f.Experience,
		"Work Auth: " + f.WorkAuthorization,
	}
	if f.LinkedIn != "" {
		msg = append(msg, "LinkedIn: "+f.LinkedIn)
	}
	if f.Portfolio != "" {
		msg = append(msg, "Portfolio: "+f.Portfolio)
	}
	if f.ResumeName != "" {
		msg = append(msg, "Resume attached: "+f.ResumeName)
	}

	app := Application{
		FirstName:  first,
		LastName:   last,
		Email:      strings.TrimSpace(f.Email),
		Message:    strings.Join(msg, "\n"),
		SourceType: f.SourceType,
		Status:     StatusNew,
	}
	if p := strings.TrimSpace(f.Phone); p != "" {
		app.Phone = &p
	}
	if f.SourceType != SourceGeneralApplication && f.SourceID != "" {
		id := f.SourceID
		app.SourceID = &id
	}
	return app
}

type EngagementType string

const (
	EngagementConsultation EngagementType = "consultation"
	EngagementAppointment  EngagementType = "appointment"
)

// ServiceInquiryForm is the "work with us" form on a service page.
type ServiceInquiryForm struct {
	Name            string         `json:"name" form:"name"`
	Email           string         `json:"email" form:"email"`
	Company         string         `json:"company" form:"company"`
	ServiceType     string         `json:"service_type" form:"service_type"`
	ServiceTitle    string         `json:"service_title" form:"service_title"`
	EngagementType  EngagementType `json:"engagement_type" form:"engagement_type"`
	ProjectScope    string         `json:"project_scope" form:"project_scope"`
	Timeline        string         `json:"timeline" form:"timeline"`
	Budget          string         `json:"budget" form:"budget"`
	AppointmentDate string         `json:"appointment_date" form:"appointment_date"`
	AppointmentTime string         `json:"appointment_time" form:"appointment_time"`
	MeetingMode     string         `json:"meeting_mode" form:"meeting_mode"`
	DocumentName    string         `json:"document_name" form:"document_name"`
}

func (f *ServiceInquiryForm) Validate() error {
	consultation := f.EngagementType == EngagementConsultation
	appointment := f.EngagementType == EngagementAppointment

	return validation.ValidateStruct(f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.Company, validation.Required),
		validation.Field(&f.EngagementType, validation.Required, validation.In(EngagementConsultation, EngagementAppointment)),
		validation.Field(&f.ProjectScope, validation.When(consultation, validation.Required)),
		validation.Field(&f.AppointmentDate, validation.When(appointment, validation.Required, validation.Date("2006-01-02"))),
		validation.Field(&f.AppointmentTime, validation.When(appointment, validation.Required, validation.Date("15:04"))),
		validation.Field(&f.MeetingMode, validation.When(appointment, validation.Required)),
	)
}

func (f *ServiceInquiryForm) ToApplication() Application {
	first, last := SplitName(f.Name)

	msg := []string{
		"Company: " + f.Company,
		"Engagement Type: " + string(f.EngagementType),
	}
	switch f.EngagementType {
	case EngagementConsultation:
		msg = append(msg,
			"Service Area: "+orNA(f.ServiceType, f.ServiceTitle),
			"Timeline: "+orNA(f.Timeline),
			"Budget: "+orNA(f.Budget),
			"Scope: "+f.ProjectScope,
		)
	case EngagementAppointment:
		msg = append(msg,
			"Date: "+f.AppointmentDate,
			"Time: "+f.AppointmentTime,
			"Meeting Mode: "+f.MeetingMode,
		)
	}
	if f.DocumentName != "" {
		msg = append(msg, "Document Attached: "+f.DocumentName)
	}

	return Application{
		FirstName:  first,
		LastName:   last,
		Email:      strings.TrimSpace(f.Email),
		Message:    strings.Join(msg, "\n"),
		SourceType: SourceServiceInquiry,
		Status:     StatusNew,
	}
}

// SplitName puts the first word in first and the rest in last. A missing
// part becomes "N/A".
func SplitName(name string) (first, last string) {
	parts := strings.Split(strings.TrimSpace(name), " ")
	first = parts[0]
	last = strings.Join(parts[1:], " ")
	if first == "" {
		first = notAvailable
	}
	if last == "" {
		last = notAvailable
	}
	return first, last
}

func orNA(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return notAvailable
}
