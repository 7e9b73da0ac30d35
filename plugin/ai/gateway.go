// Package ai provides completion and embedding services backed by
// OpenAI-compatible providers, with ordered fallback across them.
package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// BuildMessages assembles the message array sent to a provider:
// system prompt first, then prior history, then the current user content.
func BuildMessages(systemPrompt, userContent string, history []Message) []Message {
	messages := make([]Message, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, SystemMessage(systemPrompt))
	}
	messages = append(messages, history...)
	messages = append(messages, UserMessage(userContent))
	return messages
}

// ApologyReply is returned to the user when every provider is unavailable.
const ApologyReply = "Mohon maaf, semua layanan AI sedang tidak tersedia. Silakan coba lagi."

// ErrProvidersExhausted indicates that every configured provider failed or
// returned an empty response.
var ErrProvidersExhausted = errors.New("all completion providers unavailable")

// CompletionGateway produces open-ended replies and classification labels.
// Implementations must not surface provider errors to the caller: an
// exhausted provider list yields ApologyReply (or the caller's fallback
// label for classification).
type CompletionGateway interface {
	// Complete generates an open-ended reply using conversation history.
	Complete(ctx context.Context, systemPrompt, userPrompt string, history []Message) string

	// ClassifyLabel runs a single-turn classification prompt and returns the
	// raw label text, or fallbackLabel when no provider answered.
	ClassifyLabel(ctx context.Context, systemPrompt, userInput, fallbackLabel string) string
}

// FallbackGateway tries an ordered list of providers; the first non-empty
// successful response wins. Each provider call carries its own timeout, so a
// slow provider only delays, never blocks, the fallback chain.
type FallbackGateway struct {
	providers   []Completer
	onFailure   func(provider string)
	onExhausted func()
}

// GatewayOption configures a FallbackGateway.
type GatewayOption func(*FallbackGateway)

// WithFailureHook registers a callback invoked when an individual provider
// call fails.
func WithFailureHook(fn func(provider string)) GatewayOption {
	return func(g *FallbackGateway) { g.onFailure = fn }
}

// WithExhaustedHook registers a callback invoked when every provider failed.
func WithExhaustedHook(fn func()) GatewayOption {
	return func(g *FallbackGateway) { g.onExhausted = fn }
}

// NewFallbackGateway creates a gateway over the given providers, tried in order.
func NewFallbackGateway(providers []Completer, opts ...GatewayOption) *FallbackGateway {
	g := &FallbackGateway{providers: providers}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Complete implements CompletionGateway.
func (g *FallbackGateway) Complete(ctx context.Context, systemPrompt, userPrompt string, history []Message) string {
	out, err := g.complete(ctx, CallChat, BuildMessages(systemPrompt, userPrompt, history))
	if err != nil {
		slog.Error("completion providers exhausted", "providers", len(g.providers))
		if g.onExhausted != nil {
			g.onExhausted()
		}
		return ApologyReply
	}
	return out
}

// ClassifyLabel implements CompletionGateway. Classification prompts run
// single-turn on each provider's cheaper model at zero temperature.
func (g *FallbackGateway) ClassifyLabel(ctx context.Context, systemPrompt, userInput, fallbackLabel string) string {
	out, err := g.complete(ctx, CallClassify, BuildMessages(systemPrompt, userInput, nil))
	if err != nil {
		slog.Error("completion providers exhausted for classification", "fallback", fallbackLabel)
		if g.onExhausted != nil {
			g.onExhausted()
		}
		return fallbackLabel
	}
	return out
}

func (g *FallbackGateway) complete(ctx context.Context, kind CallKind, messages []Message) (string, error) {
	for _, p := range g.providers {
		out, err := p.Complete(ctx, kind, messages)
		if err != nil {
			slog.Warn("completion provider failed", "provider", p.Name(), "error", err)
			if g.onFailure != nil {
				g.onFailure(p.Name())
			}
			continue
		}
		if strings.TrimSpace(out) == "" {
			slog.Warn("completion provider returned empty response", "provider", p.Name())
			if g.onFailure != nil {
				g.onFailure(p.Name())
			}
			continue
		}
		return out, nil
	}
	return "", ErrProvidersExhausted
}

var _ CompletionGateway = (*FallbackGateway)(nil)
