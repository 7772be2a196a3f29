package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomascufaro/whatsup-assistant/internal/tool"
)

func TestSystemPromptWithoutTools(t *testing.T) {
	prompt := buildSystemPrompt(nil)
	assert.Equal(t, systemPrompt, prompt)
	assert.NotContains(t, prompt, "Action Input:")
}

func TestSystemPromptAdvertisesOnlySupportedCapabilities(t *testing.T) {
	// The email tool only sends; the persona must not promise reading mail.
	assert.Contains(t, systemPrompt, "Enviar correos electrónicos")
	assert.NotContains(t, systemPrompt, "leer correos")
}

func TestSystemPromptWithToolsAppendsProtocol(t *testing.T) {
	registry, err := tool.NewRegistry(&fakeTool{name: "calendar"})
	require.NoError(t, err)

	prompt := buildSystemPrompt(registry)
	assert.Contains(t, prompt, systemPrompt)
	assert.Contains(t, prompt, "calendar")
	assert.Contains(t, prompt, "Final Answer:")
}
