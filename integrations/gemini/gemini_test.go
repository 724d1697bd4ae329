package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	c, err := New(context.Background(), Config{APIKey: "  "})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNew_DefaultModel(t *testing.T) {
	c, err := New(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.model)
}

func TestBuildRequest(t *testing.T) {
	contents, cfg := buildRequest("be brief", "what do you do?")
	require.Len(t, contents, 1)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, "what do you do?", contents[0].Parts[0].Text)
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)

	_, cfg = buildRequest("  ", "hi")
	assert.Nil(t, cfg)
}
