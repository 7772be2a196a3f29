// Package http provides the webhook and operational HTTP handlers.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomascufaro/whatsup-assistant/internal/agent"
	"github.com/tomascufaro/whatsup-assistant/internal/whatsapp"
)

// MessageSender delivers an outbound message to a WhatsApp recipient.
type MessageSender interface {
	SendText(ctx context.Context, to, body string) error
}

var _ MessageSender = (*whatsapp.Sender)(nil)

// Handler handles HTTP requests.
type Handler struct {
	agent       *agent.Agent
	sender      MessageSender // nil disables the Meta outbound path
	verifyToken string
	logger      zerolog.Logger
}

// NewHandler creates a new handler. sender may be nil when only the Twilio
// flow is configured.
func NewHandler(a *agent.Agent, sender MessageSender, verifyToken string, logger zerolog.Logger) *Handler {
	return &Handler{
		agent:       a,
		sender:      sender,
		verifyToken: verifyToken,
		logger:      logger.With().Str("component", "http").Logger(),
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhook/whatsapp", h.TwilioWebhook)
	e.POST("/webhook/meta", h.MetaWebhook)
	e.GET("/webhook/meta", h.MetaVerify)

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// TwilioWebhook handles an inbound Twilio WhatsApp message and replies with a
// TwiML document. It always returns 200 with text/xml: bouncing the webhook
// would make Twilio retry and show an error to the end user.
func (h *Handler) TwilioWebhook(c echo.Context) error {
	correlationID := uuid.New().String()
	logger := h.logger.With().Str("correlation_id", correlationID).Logger()

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read webhook body")
		return c.Blob(http.StatusOK, echo.MIMETextXML, []byte(whatsapp.TwiML("")))
	}

	msg, err := whatsapp.ParseTwilioForm(string(raw))
	if err != nil {
		logger.Error().Err(err).Msg("failed to parse webhook form")
		return c.Blob(http.StatusOK, echo.MIMETextXML, []byte(whatsapp.TwiML("")))
	}

	logger.Info().
		Str("message_sid", msg.MessageSid).
		Str("from", msg.From).
		Msg("twilio message received")

	reply := h.agent.ProcessMessage(c.Request().Context(), msg.Body, msg.From, correlationID)
	return c.Blob(http.StatusOK, echo.MIMETextXML, []byte(whatsapp.TwiML(reply)))
}

// MetaWebhook handles an inbound Meta Cloud API notification. The reply goes
// out through the Graph API; the webhook itself is acknowledged immediately.
func (h *Handler) MetaWebhook(c echo.Context) error {
	correlationID := uuid.New().String()
	logger := h.logger.With().Str("correlation_id", correlationID).Logger()

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read webhook body")
		return c.NoContent(http.StatusOK)
	}

	msg, ok, err := whatsapp.ParseMetaWebhook(raw)
	if err != nil {
		logger.Error().Err(err).Msg("failed to parse webhook payload")
		return c.NoContent(http.StatusOK)
	}
	if !ok {
		// Status notification or unsupported message type.
		return c.NoContent(http.StatusOK)
	}

	logger.Info().
		Str("message_id", msg.ID).
		Str("from", msg.From).
		Msg("meta message received")

	reply := h.agent.ProcessMessage(c.Request().Context(), msg.Body, msg.From, correlationID)

	if h.sender == nil {
		logger.Warn().Msg("no sender configured, dropping reply")
		return c.NoContent(http.StatusOK)
	}

	sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.sender.SendText(sendCtx, msg.From, reply); err != nil {
		logger.Error().Err(err).Msg("failed to send reply")
	}
	return c.NoContent(http.StatusOK)
}

// MetaVerify answers the Cloud API webhook verification handshake.
func (h *Handler) MetaVerify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		return c.String(http.StatusOK, challenge)
	}
	h.logger.Warn().Str("mode", mode).Msg("webhook verification rejected")
	return c.NoContent(http.StatusForbidden)
}
