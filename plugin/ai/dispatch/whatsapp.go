// Package dispatch hands confirmed escalations to a human operator: it
// writes the audit record and pushes a WhatsApp notification.
package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultNotifyTimeout = 10 * time.Second

// WhatsAppSender delivers messages through the Fonnte gateway.
type WhatsAppSender struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewWhatsAppSender creates a sender for the given Fonnte credentials.
func NewWhatsAppSender(apiKey, baseURL string, timeout time.Duration) *WhatsAppSender {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &WhatsAppSender{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Send posts one message to the given number.
func (s *WhatsAppSender) Send(ctx context.Context, to, message string) error {
	form := url.Values{}
	form.Set("target", NormalizePhone(to))
	form.Set("message", message)
	form.Set("countryCode", "62")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to build fonnte request")
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "fonnte request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("fonnte returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// NormalizePhone rewrites an Indonesian number to the 62-prefixed form
// Fonnte expects: "0812..." becomes "62812...", "+62812..." loses the plus.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	switch {
	case strings.HasPrefix(number, "62"):
		return number
	case strings.HasPrefix(number, "0"):
		return "62" + number[1:]
	case strings.HasPrefix(number, "8"):
		return "62" + number
	}
	return number
}
