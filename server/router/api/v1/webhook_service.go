package v1

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inaratravel/concierge/server/service/chat"
)

// webhookPayload tolerates the field spellings different WhatsApp gateways
// use for the same two values.
type webhookPayload map[string]any

func (p webhookPayload) first(keys ...string) string {
	for _, key := range keys {
		if v, ok := p[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// handleWhatsAppWebhook receives an inbound WhatsApp message, runs it
// through the chat engine, and replies to the sender through the gateway.
func (s *APIV1Service) handleWhatsAppWebhook(c echo.Context) error {
	payload := webhookPayload{}
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed webhook payload").SetInternal(err)
	}

	sender := payload.first("sender", "from", "phone")
	message := payload.first("message", "text", "pesan")
	if sender == "" || message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "webhook payload missing sender or message")
	}

	if !s.limiter.Allow(sender) {
		// Gateways retry on errors; acknowledge and drop instead.
		return c.JSON(http.StatusOK, map[string]string{"status": "rate_limited"})
	}

	result := s.Engine.Handle(c.Request().Context(), chat.Request{
		UserID:  sender,
		Message: message,
		// The sender's own number is always a reachable contact.
		ContactHint: sender,
		Channel:     "whatsapp",
	})

	if s.Notifier != nil {
		if err := s.Notifier.Send(c.Request().Context(), sender, result.Reply); err != nil {
			slog.Error("failed to reply over whatsapp", "sender", sender, "error", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"replyText": result.Reply,
		"escalated": result.Escalated,
	})
}
