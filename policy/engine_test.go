package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)
	return engine
}

func TestEvaluateDefaultAllow(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		ToolName: "client_database",
		ChatID:   "chat-1",
		Args:     map[string]interface{}{"action": "list"},
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestEvaluateBlocksForeignEmailDomain(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		ToolName:           "email",
		ChatID:             "chat-1",
		Args:               map[string]interface{}{"action": "send", "to": "alguien@otro.com"},
		AllowedEmailDomain: "@miempresa.com",
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, decision)
}

func TestEvaluateAllowsConfiguredEmailDomain(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		ToolName:           "email",
		ChatID:             "chat-1",
		Args:               map[string]interface{}{"action": "send", "to": "Cliente@MiEmpresa.com"},
		AllowedEmailDomain: "@miempresa.com",
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestEvaluateBlocksSuffixLookalikeDomain(t *testing.T) {
	engine := newTestEngine(t)

	// notacme.com ends with acme.com as a string but is a different domain.
	decision, err := engine.Evaluate(context.Background(), Input{
		ToolName:           "email",
		ChatID:             "chat-1",
		Args:               map[string]interface{}{"action": "send", "to": "evil@notacme.com"},
		AllowedEmailDomain: "acme.com",
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, decision)
}

func TestEvaluateAllowsBareDomainConfig(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		ToolName:           "email",
		ChatID:             "chat-1",
		Args:               map[string]interface{}{"action": "send", "to": "cliente@acme.com"},
		AllowedEmailDomain: "acme.com",
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestEvaluateBlocksMalformedRecipient(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		ToolName:           "email",
		ChatID:             "chat-1",
		Args:               map[string]interface{}{"action": "send", "to": "sin-arroba"},
		AllowedEmailDomain: "acme.com",
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, decision)
}

func TestEvaluateEmailWithoutAllowlistIsAllowed(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		ToolName: "email",
		ChatID:   "chat-1",
		Args:     map[string]interface{}{"action": "send", "to": "alguien@otro.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestNewEngineRejectsInvalidPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package tool_policy\n\ndecision = {")
	assert.Error(t, err)
}
