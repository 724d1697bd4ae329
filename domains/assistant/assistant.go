package assistant

import "context"

type Intent string

const (
	IntentServices Intent = "services"
	IntentCareers  Intent = "careers"
	IntentStudents Intent = "students"
	IntentContact  Intent = "contact"
	IntentDefault  Intent = "default"
)

type QuickAction struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Link  string `json:"link"`
}

type Request struct {
	Message string `json:"message"`
}

type Reply struct {
	Intent       Intent        `json:"intent"`
	Text         string        `json:"text"`
	Source       string        `json:"source"`
	QuickActions []QuickAction `json:"quick_actions"`
}

// Generator produces a free text answer given a system prompt and the user
// message. The Gemini client implements it.
type Generator interface {
	Generate(ctx context.Context, system, message string) (string, error)
}

type IAssistantUsecase interface {
	Greeting() Reply
	Ask(ctx context.Context, req Request) (Reply, error)
}
