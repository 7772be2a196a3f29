package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig carries the delivery settings for the email tool.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sendFunc matches smtp.SendMail, injectable for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends mail on behalf of the business over SMTP.
type Email struct {
	cfg  SMTPConfig
	send sendFunc
}

var _ Tool = (*Email)(nil)

// NewEmail creates the email tool. The tool reports itself unconfigured at
// execution time when no SMTP host is set.
func NewEmail(cfg SMTPConfig) *Email {
	return &Email{cfg: cfg, send: smtp.SendMail}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Description() string {
	return "Send an email on behalf of the business."
}

func (e *Email) InputSchema() string {
	return `{"action": "send", "to": "...", "subject": "...", "body": "..."}`
}

type emailArgs struct {
	Action  string `json:"action"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Execute sends one email and returns a text result.
func (e *Email) Execute(ctx context.Context, input string) (string, error) {
	var args emailArgs
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	if args.Action != "send" {
		return "", fmt.Errorf("unknown action: %q", args.Action)
	}
	if args.To == "" || args.Subject == "" {
		return "", errors.New("to and subject are required for 'send' action")
	}
	if e.cfg.Host == "" {
		return "", errors.New("email is not configured")
	}

	msg := buildMessage(e.cfg.From, args.To, args.Subject, args.Body)

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	if err := e.send(addr, auth, e.cfg.From, []string{args.To}, msg); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return fmt.Sprintf("Email sent successfully to %s", args.To), nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
