// Package whatsapp holds the provider-specific codecs: the Twilio form/TwiML
// exchange and the Meta Business Cloud API webhook plus sender.
package whatsapp

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// TwilioMessage is one inbound WhatsApp message as Twilio delivers it.
type TwilioMessage struct {
	Body       string
	From       string
	MessageSid string
}

// ParseTwilioForm decodes Twilio's application/x-www-form-urlencoded webhook
// body. Missing fields decode to empty strings; the orchestrator handles an
// empty body, and an empty From just means a stateless turn.
func ParseTwilioForm(body string) (TwilioMessage, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return TwilioMessage{}, fmt.Errorf("failed to parse webhook form: %w", err)
	}
	return TwilioMessage{
		Body:       values.Get("Body"),
		From:       values.Get("From"),
		MessageSid: values.Get("MessageSid"),
	}, nil
}

// TwiML renders a messaging response document. An empty body renders an empty
// <Response/>, which tells Twilio to reply with nothing.
func TwiML(body string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response>`)
	if body != "" {
		b.WriteString("<Message>")
		_ = xml.EscapeText(&b, []byte(body)) // strings.Builder writes cannot fail
		b.WriteString("</Message>")
	}
	b.WriteString("</Response>")
	return b.String()
}
