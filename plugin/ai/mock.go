package ai

import (
	"context"
	"sync"
)

// MockGateway is a scriptable CompletionGateway for tests.
type MockGateway struct {
	// CompleteFunc overrides Complete; when nil, CompleteReply is returned.
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string, history []Message) string
	// ClassifyFunc overrides ClassifyLabel; when nil, ClassifyReply is
	// returned, or the fallback label when ClassifyReply is empty.
	ClassifyFunc func(ctx context.Context, systemPrompt, userInput, fallbackLabel string) string

	CompleteReply string
	ClassifyReply string

	mu            sync.Mutex
	CompleteCalls []string
	ClassifyCalls []string
}

// NewMockGateway creates a mock answering every completion with reply.
func NewMockGateway(reply string) *MockGateway {
	return &MockGateway{CompleteReply: reply}
}

func (m *MockGateway) Complete(ctx context.Context, systemPrompt, userPrompt string, history []Message) string {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, userPrompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt, history)
	}
	return m.CompleteReply
}

func (m *MockGateway) ClassifyLabel(ctx context.Context, systemPrompt, userInput, fallbackLabel string) string {
	m.mu.Lock()
	m.ClassifyCalls = append(m.ClassifyCalls, userInput)
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, systemPrompt, userInput, fallbackLabel)
	}
	if m.ClassifyReply == "" {
		return fallbackLabel
	}
	return m.ClassifyReply
}

var _ CompletionGateway = (*MockGateway)(nil)
