package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const metaGraphBaseURL = "https://graph.facebook.com/v18.0"

// MetaMessage is one inbound text message from a Meta Business webhook.
type MetaMessage struct {
	From string
	ID   string
	Body string
}

// metaEnvelope mirrors the fields of the Cloud API webhook payload we need.
type metaEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					ID   string `json:"id"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseMetaWebhook extracts the first text message from a Cloud API webhook
// payload. Status-only notifications (delivery receipts and the like) carry no
// messages; they return ok=false and must be acknowledged without processing.
func ParseMetaWebhook(payload []byte) (MetaMessage, bool, error) {
	var env metaEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return MetaMessage{}, false, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	for _, entry := range env.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "" && msg.Type != "text" {
					continue
				}
				return MetaMessage{From: msg.From, ID: msg.ID, Body: msg.Text.Body}, true, nil
			}
		}
	}
	return MetaMessage{}, false, nil
}

// Sender delivers outbound messages through the Meta Cloud API. Unlike the
// Twilio flow, Meta replies are sent out-of-band rather than in the webhook
// response.
type Sender struct {
	client        *resty.Client
	phoneNumberID string
	logger        zerolog.Logger
}

// NewSender builds a Cloud API sender for the given phone number ID.
func NewSender(accessToken, phoneNumberID string, logger zerolog.Logger) *Sender {
	client := resty.New().
		SetBaseURL(metaGraphBaseURL).
		SetAuthToken(accessToken).
		SetTimeout(30 * time.Second)
	return &Sender{
		client:        client,
		phoneNumberID: phoneNumberID,
		logger:        logger.With().Str("component", "meta_sender").Logger(),
	}
}

// SendText posts a text message to the recipient's WhatsApp number.
func (s *Sender) SendText(ctx context.Context, to, body string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(fmt.Sprintf("/%s/messages", s.phoneNumberID))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send message returned status %d: %s", resp.StatusCode(), resp.String())
	}

	s.logger.Info().Str("to", to).Int("status", resp.StatusCode()).Msg("message sent")
	return nil
}
