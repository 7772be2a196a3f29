// Package config provides environment-backed configuration.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all environment-backed settings. Required fields missing at
// startup are a fatal configuration error, not a per-request failure.
type Config struct {
	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Model backend. The timeout is generous on purpose: the backend may
	// need to cold-start a model server.
	LLMEndpointURL string        `env:"LLM_ENDPOINT_URL,notEmpty"`
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"3m"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"500"`
	LLMTemperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`

	// Conversation memory
	MaxTurns int `env:"MAX_TURNS" envDefault:"20"`

	// Tools
	ToolsEnabled bool   `env:"TOOLS_ENABLED" envDefault:"true"`
	MaxToolSteps int    `env:"MAX_TOOL_STEPS" envDefault:"5"`
	ToolDBPath   string `env:"TOOL_DB_PATH" envDefault:"file:assistant.db?cache=shared&mode=rwc"`

	// Email tool (SMTP). The tool reports itself unconfigured when Host is
	// empty; it is not a startup error because tools are optional.
	SMTPHost           string `env:"SMTP_HOST"`
	SMTPPort           int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername       string `env:"SMTP_USERNAME"`
	SMTPPassword       string `env:"SMTP_PASSWORD"`
	SMTPFrom           string `env:"SMTP_FROM"`
	// EmailAllowedDomain restricts email recipients to one domain, written
	// with or without a leading "@" (e.g. "acme.com" or "@acme.com").
	// Empty disables the restriction.
	EmailAllowedDomain string `env:"EMAIL_ALLOWED_DOMAIN"`

	// WhatsApp provider (Meta Business API). Twilio webhooks need no
	// outbound credentials: the reply travels back in the TwiML response.
	MetaAccessToken   string `env:"META_ACCESS_TOKEN"`
	MetaPhoneNumberID string `env:"META_PHONE_NUMBER_ID"`
	MetaVerifyToken   string `env:"META_VERIFY_TOKEN"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses the environment. It fails fast on missing required values.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
