// Package memory keeps the recent conversation window per user, supplied to
// the completion gateway for context.
package memory

import (
	"context"
	"time"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one conversation turn.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryService stores a bounded, independently expiring conversation
// window per user.
type HistoryService interface {
	// Recent returns the stored turns in chronological order.
	Recent(ctx context.Context, userID string) ([]Turn, error)

	// AppendExchange records one user message and the assistant's reply,
	// evicting the oldest turns beyond the window bound.
	AppendExchange(ctx context.Context, userID, userMessage, assistantReply string) error
}
