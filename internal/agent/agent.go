// Package agent orchestrates one conversation turn: it validates the inbound
// message, assembles the context window, drives the model exchange
// (optionally through the tool loop) and records the outcome.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomascufaro/whatsup-assistant/internal/llm"
	"github.com/tomascufaro/whatsup-assistant/internal/memory"
	"github.com/tomascufaro/whatsup-assistant/internal/metrics"
	"github.com/tomascufaro/whatsup-assistant/internal/tool"
	"github.com/tomascufaro/whatsup-assistant/policy"
)

// DefaultMaxToolSteps bounds the think/act/observe cycles per message.
const DefaultMaxToolSteps = 5

// resetCommand is the only in-band control command, matched case-insensitively.
const resetCommand = "/reset"

// Fixed user-facing replies.
const (
	emptyReply  = "Lo siento, no recibí ningún mensaje."
	resetReply  = "Conversación reiniciada. ¿En qué puedo ayudarte?"
	gaveUpReply = "Lo siento, no pude completar la tarea solicitada."
)

func errorReply(err error) string {
	return fmt.Sprintf("Lo siento, ocurrió un error al procesar tu mensaje (%v). Por favor intenta de nuevo más tarde.", err)
}

// Config carries the orchestrator tuning knobs.
type Config struct {
	MaxToolSteps       int
	MaxTokens          int
	Temperature        float64
	AllowedEmailDomain string
}

// Agent is the top-level coordinator for inbound messages.
type Agent struct {
	memory *memory.Manager
	llm    llm.Client
	tools  *tool.Registry // nil or empty disables the tool loop
	policy *policy.Engine // optional gate for tool invocations
	cfg    Config
	logger zerolog.Logger
}

// New creates the orchestrator. registry and policyEngine may be nil.
func New(mem *memory.Manager, client llm.Client, registry *tool.Registry, policyEngine *policy.Engine, cfg Config, logger zerolog.Logger) *Agent {
	if cfg.MaxToolSteps <= 0 {
		cfg.MaxToolSteps = DefaultMaxToolSteps
	}
	return &Agent{
		memory: mem,
		llm:    client,
		tools:  registry,
		policy: policyEngine,
		cfg:    cfg,
		logger: logger.With().Str("component", "agent").Logger(),
	}
}

// ProcessMessage handles one inbound message and always returns reply text:
// every failure below this boundary is folded into a user-safe message. An
// empty chatID selects stateless mode, where the store is never touched. An
// empty correlationID gets a generated one.
func (a *Agent) ProcessMessage(ctx context.Context, text, chatID, correlationID string) string {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	logger := a.logger.With().
		Str("correlation_id", correlationID).
		Str("chat_id", chatID).
		Logger()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		logger.Warn().Msg("empty message")
		metrics.MessagesTotal.WithLabelValues("empty").Inc()
		return emptyReply
	}

	if strings.EqualFold(trimmed, resetCommand) {
		if chatID != "" {
			a.memory.Clear(chatID)
		}
		logger.Info().Msg("conversation reset")
		metrics.MessagesTotal.WithLabelValues("reset").Inc()
		return resetReply
	}

	var history []llm.Message
	if chatID != "" {
		history = a.memory.BuildContext(chatID)
	}

	reply, err := a.respond(ctx, logger, history, trimmed, chatID)
	if err != nil {
		// The conversation stays in its pre-call state: nothing was
		// recorded for this attempt.
		logger.Error().Err(err).Msg("failed to produce reply")
		metrics.MessagesTotal.WithLabelValues("error").Inc()
		return errorReply(err)
	}

	if chatID != "" {
		a.memory.RecordTurn(chatID, trimmed, reply)
	}
	logger.Info().Int("context_entries", len(history)).Msg("message processed")
	metrics.MessagesTotal.WithLabelValues("ok").Inc()
	return reply
}

func (a *Agent) respond(ctx context.Context, logger zerolog.Logger, history []llm.Message, input, chatID string) (string, error) {
	if a.tools != nil && a.tools.Len() > 0 {
		return a.runToolLoop(ctx, logger, history, input, chatID)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: buildSystemPrompt(nil)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: input})
	return a.generate(ctx, messages)
}

// generate performs one model exchange with instrumentation.
func (a *Agent) generate(ctx context.Context, messages []llm.Message) (string, error) {
	start := time.Now()
	text, err := a.llm.Generate(ctx, &llm.GenerateRequest{
		Messages:    messages,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	metrics.LLMLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.LLMRequestsTotal.WithLabelValues("ok").Inc()
	return text, nil
}
