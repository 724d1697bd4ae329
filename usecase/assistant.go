package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	catalogDomain "github.com/jivitsolutions/jivit-site/catalog/domain"
	settingsDomain "github.com/jivitsolutions/jivit-site/core/settings/domain"
	"github.com/jivitsolutions/jivit-site/domains/assistant"
	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/sirupsen/logrus"
)

const (
	maxAssistantMessage = 1000
	generateTimeout     = 15 * time.Second
	knowledgeItemLimit  = 20
)

var greeting = "Hello! I'm your JivIT Assistant. How can I help you today?"

var quickActions = []assistant.QuickAction{
	{Label: "Our Services", Value: string(assistant.IntentServices), Link: "/it-solutions"},
	{Label: "Careers", Value: string(assistant.IntentCareers), Link: "/careers"},
	{Label: "For Students", Value: string(assistant.IntentStudents), Link: "/students"},
	{Label: "Contact Us", Value: string(assistant.IntentContact), Link: "/contact"},
}

var ruleReplies = map[assistant.Intent]string{
	assistant.IntentServices: "We provide premium IT solutions including Web Development, App Design, and Digital Transformation. Would you like to see our full list of services?",
	assistant.IntentCareers:  "Looking for your next big move? We're always hiring talented individuals. Check out our careers page for open positions!",
	assistant.IntentStudents: "Are you a student? We have amazing internship programs and resources tailored for you. Visit our Students section to learn more.",
	assistant.IntentContact:  "Need to talk? You can reach us via the contact form on our website or visit us at our office. How else can I assist?",
	assistant.IntentDefault:  "That's interesting! I'm still learning, but I can certainly help you navigate the site or answer questions about JivIT Solutions. Try one of the quick actions below!",
}

// intentKeywords is checked in order; the first match wins.
var intentKeywords = []struct {
	intent   assistant.Intent
	keywords []string
}{
	{assistant.IntentServices, []string{"service"}},
	{assistant.IntentCareers, []string{"job", "career", "work"}},
	{assistant.IntentStudents, []string{"student", "intern"}},
	{assistant.IntentContact, []string{"contact", "reach", "email"}},
}

// Classify maps a visitor message to the intent of the site widget.
func Classify(message string) assistant.Intent {
	lower := strings.ToLower(message)
	for _, rule := range intentKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return assistant.IntentDefault
}

type ServiceLister interface {
	List(ctx context.Context, filter catalogDomain.ListFilter) ([]catalogDomain.ServiceOffering, error)
}

type JobLister interface {
	List(ctx context.Context, filter catalogDomain.ListFilter) ([]catalogDomain.JobOpening, error)
}

type ProgramLister interface {
	List(ctx context.Context, filter catalogDomain.ListFilter) ([]catalogDomain.StudentProgram, error)
}

type PublicSettingsReader interface {
	GetPublic(ctx context.Context) (settingsDomain.PublicSettings, error)
}

// AssistantSources feed the LLM prompt. They are only read when a generator
// is configured, and always through the catalog cache.
type AssistantSources struct {
	Services ServiceLister
	Jobs     JobLister
	Programs ProgramLister
	Settings PublicSettingsReader
}

type assistantService struct {
	src AssistantSources
	gen assistant.Generator
}

// NewAssistantService answers with the keyword rules alone when gen is nil.
func NewAssistantService(src AssistantSources, gen assistant.Generator) assistant.IAssistantUsecase {
	return &assistantService{src: src, gen: gen}
}

func (s *assistantService) Greeting() assistant.Reply {
	return assistant.Reply{
		Intent:       assistant.IntentDefault,
		Text:         greeting,
		Source:       "rules",
		QuickActions: quickActions,
	}
}

func (s *assistantService) Ask(ctx context.Context, req assistant.Request) (assistant.Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return assistant.Reply{}, pkgError.ValidationError("message: cannot be blank")
	}
	if utf8.RuneCountInString(message) > maxAssistantMessage {
		return assistant.Reply{}, pkgError.ValidationError(fmt.Sprintf("message: must be at most %d characters", maxAssistantMessage))
	}

	intent := Classify(message)
	reply := assistant.Reply{
		Intent:       intent,
		Text:         ruleReplies[intent],
		Source:       "rules",
		QuickActions: quickActions,
	}
	if s.gen == nil {
		return reply, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	text, err := s.gen.Generate(genCtx, s.systemPrompt(ctx), message)
	if err != nil {
		logrus.WithError(err).Warn("[ASSISTANT] generator failed, using rule reply")
		return reply, nil
	}
	if text = strings.TrimSpace(text); text != "" {
		reply.Text = text
		reply.Source = "gemini"
	}
	return reply, nil
}

func (s *assistantService) systemPrompt(ctx context.Context) string {
	site := "JivIT Solutions"
	contact := ""
	if s.src.Settings != nil {
		if pub, err := s.src.Settings.GetPublic(ctx); err == nil {
			if pub.SiteName != "" {
				site = pub.SiteName
			}
			contact = pub.ContactEmail
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the website assistant of %s. Answer briefly, in the visitor's language, using only the facts below. ", site)
	b.WriteString("When you do not know, point the visitor to the contact form.\n")
	if contact != "" {
		fmt.Fprintf(&b, "\nContact email: %s\n", contact)
	}

	if s.src.Services != nil {
		if items, err := s.src.Services.List(ctx, catalogDomain.ListFilter{}); err == nil {
			writeSection(&b, "Services", items, func(v catalogDomain.ServiceOffering) string {
				return fmt.Sprintf("%s (%s): %s", v.Title, v.Category, v.Subtitle)
			})
		}
	}
	if s.src.Jobs != nil {
		if items, err := s.src.Jobs.List(ctx, catalogDomain.ListFilter{}); err == nil {
			writeSection(&b, "Open roles", items, func(v catalogDomain.JobOpening) string {
				return fmt.Sprintf("%s, %s, %s (%s)", v.Title, v.Department, v.Location, v.Type)
			})
		}
	}
	if s.src.Programs != nil {
		if items, err := s.src.Programs.List(ctx, catalogDomain.ListFilter{}); err == nil {
			writeSection(&b, "Student programs", items, func(v catalogDomain.StudentProgram) string {
				return fmt.Sprintf("%s (%s): %s", v.Title, v.Type, v.Subtitle)
			})
		}
	}
	return b.String()
}

func writeSection[T any](b *strings.Builder, title string, items []T, line func(T) string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for i, item := range items {
		if i == knowledgeItemLimit {
			break
		}
		b.WriteString("- ")
		b.WriteString(line(item))
		b.WriteByte('\n')
	}
}
