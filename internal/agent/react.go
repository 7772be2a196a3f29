package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomascufaro/whatsup-assistant/internal/llm"
	"github.com/tomascufaro/whatsup-assistant/internal/metrics"
	"github.com/tomascufaro/whatsup-assistant/policy"
)

// ReAct protocol markers. The loop alternates Thinking (model output),
// Acting (tool execution) and Observing (result fed back) until the model
// emits a final answer or the step ceiling is hit.
const (
	actionMarker      = "Action:"
	actionInputMarker = "Action Input:"
	finalAnswerMarker = "Final Answer:"
	observationPrefix = "Observation: "
)

// runToolLoop drives the bounded think/act/observe cycle. Hitting the step
// ceiling is a normal terminal state, not an error.
func (a *Agent) runToolLoop(ctx context.Context, logger zerolog.Logger, history []llm.Message, input, chatID string) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: buildSystemPrompt(a.tools)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: input})

	for step := 0; step < a.cfg.MaxToolSteps; step++ {
		out, err := a.generate(ctx, messages)
		if err != nil {
			return "", err
		}

		name, toolInput, hasAction := parseAction(out)
		if !hasAction {
			if answer, ok := parseFinalAnswer(out); ok {
				return answer, nil
			}
			// No action and no final marker: the model answered directly.
			return strings.TrimSpace(out), nil
		}

		observation := a.executeTool(ctx, logger, chatID, name, toolInput, step)
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: out},
			llm.Message{Role: llm.RoleUser, Content: observationPrefix + observation},
		)
	}

	logger.Warn().Int("max_steps", a.cfg.MaxToolSteps).Msg("tool loop hit step ceiling, giving up")
	return gaveUpReply, nil
}

// executeTool resolves, authorizes and runs one tool invocation, always
// returning an observation string. A tool failure never aborts the loop.
func (a *Agent) executeTool(ctx context.Context, logger zerolog.Logger, chatID, name, input string, step int) (observation string) {
	toolCallID := "tc_" + uuid.New().String()[:8]
	logger = logger.With().
		Str("tool_call_id", toolCallID).
		Str("tool", name).
		Int("step", step).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("tool panicked")
			metrics.ToolInvocationsTotal.WithLabelValues(name, "error").Inc()
			observation = fmt.Sprintf("Error: tool %q failed unexpectedly", name)
		}
	}()

	t, ok := a.tools.Get(name)
	if !ok {
		logger.Warn().Msg("model requested unknown tool")
		metrics.ToolInvocationsTotal.WithLabelValues(name, "unknown").Inc()
		return fmt.Sprintf("Error: unknown tool %q. Available tools: %s", name, strings.Join(a.tools.Names(), ", "))
	}

	if a.policy != nil {
		args := map[string]interface{}{}
		if err := json.Unmarshal([]byte(input), &args); err != nil {
			args = map[string]interface{}{}
		}
		decision, err := a.policy.Evaluate(ctx, policy.Input{
			ToolName:           name,
			ChatID:             chatID,
			Args:               args,
			AllowedEmailDomain: a.cfg.AllowedEmailDomain,
		})
		if err != nil {
			logger.Error().Err(err).Msg("policy evaluation failed")
			metrics.ToolInvocationsTotal.WithLabelValues(name, "error").Inc()
			return fmt.Sprintf("Error: could not evaluate policy for tool %q", name)
		}
		if decision != policy.DecisionAllow {
			logger.Warn().Str("decision", decision).Msg("tool invocation blocked by policy")
			metrics.ToolInvocationsTotal.WithLabelValues(name, "blocked").Inc()
			return fmt.Sprintf("Error: tool %q was blocked by policy", name)
		}
	}

	start := time.Now()
	result, err := t.Execute(ctx, input)
	if err != nil {
		logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("tool execution failed")
		metrics.ToolInvocationsTotal.WithLabelValues(name, "error").Inc()
		return "Error: " + err.Error()
	}

	logger.Info().Dur("duration", time.Since(start)).Msg("tool executed")
	metrics.ToolInvocationsTotal.WithLabelValues(name, "ok").Inc()
	return result
}

// parseAction extracts a tool request from model output. The input defaults
// to an empty JSON object when the model omits it.
func parseAction(out string) (name, input string, ok bool) {
	idx := strings.Index(out, actionMarker)
	if idx < 0 {
		return "", "", false
	}
	rest := out[idx+len(actionMarker):]

	inputIdx := strings.Index(rest, actionInputMarker)
	if inputIdx < 0 {
		name = cleanActionName(firstLine(rest))
		return name, "{}", name != ""
	}

	name = cleanActionName(firstLine(rest[:inputIdx]))
	input = strings.TrimSpace(rest[inputIdx+len(actionInputMarker):])
	// Cut off anything the model hallucinated past its own action input.
	if cut := strings.Index(input, "\nObservation"); cut >= 0 {
		input = strings.TrimSpace(input[:cut])
	}
	if cut := strings.Index(input, "\nThought"); cut >= 0 {
		input = strings.TrimSpace(input[:cut])
	}
	if input == "" {
		input = "{}"
	}
	return name, input, name != ""
}

// parseFinalAnswer extracts the terminal answer marker.
func parseFinalAnswer(out string) (string, bool) {
	idx := strings.Index(out, finalAnswerMarker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(out[idx+len(finalAnswerMarker):]), true
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

func cleanActionName(s string) string {
	return strings.Trim(strings.TrimSpace(s), "`\"'")
}
