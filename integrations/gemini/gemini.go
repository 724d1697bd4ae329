package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var ErrMissingAPIKey = errors.New("gemini: api key is required")

type Config struct {
	APIKey string
	Model  string
}

// Client answers assistant questions through the Gemini API.
type Client struct {
	models *genai.Models
	model  string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	logrus.Infof("[GEMINI] assistant enabled with model %s", model)
	return &Client{models: client.Models, model: model}, nil
}

func (c *Client) Generate(ctx context.Context, system, message string) (string, error) {
	contents, genConfig := buildRequest(system, message)
	result, err := c.models.GenerateContent(ctx, c.model, contents, genConfig)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return strings.TrimSpace(result.Text()), nil
}

func buildRequest(system, message string) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: message},
			},
		},
	}

	var genConfig *genai.GenerateContentConfig
	if strings.TrimSpace(system) != "" {
		genConfig = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}
	return contents, genConfig
}
