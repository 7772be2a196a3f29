// Package policy gates model-requested tool invocations through an OPA
// policy. The registry of tools is fixed at construction; the policy decides
// per call whether an invocation may run.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions a policy can return.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the given policy content and prepares the decision
// query.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.decision"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input describes one tool invocation for the policy.
type Input struct {
	ToolName           string                 `json:"tool_name"`
	ChatID             string                 `json:"chat_id"`
	Args               map[string]interface{} `json:"args"`
	AllowedEmailDomain string                 `json:"allowed_email_domain"`
}

// Evaluate returns the policy decision for one tool invocation. The policy
// is expected to define a string decision; an empty result set means allow.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("policy returned non-string decision: %v", results[0].Expressions[0].Value)
}

// DefaultPolicy allows everything except sending email outside the
// configured domain, when one is configured. The recipient domain is the
// exact part after "@", so "notacme.com" never matches "acme.com"; the
// configured value may be written with or without a leading "@".
const DefaultPolicy = `
package tool_policy

default decision = "allow"

decision = "block" {
	input.tool_name == "email"
	input.allowed_email_domain != ""
	not recipient_domain_allowed
}

recipient_domain_allowed {
	parts := split(lower(input.args.to), "@")
	count(parts) == 2
	parts[1] == trim_left(lower(input.allowed_email_domain), "@")
}
`
