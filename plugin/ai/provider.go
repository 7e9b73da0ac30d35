package ai

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// CallKind selects the model and sampling for a provider call.
type CallKind int

const (
	// CallChat is an open-ended reply: the provider's main model with a
	// low-but-nonzero temperature for natural phrasing.
	CallChat CallKind = iota
	// CallClassify is an intent classification: the provider's faster model
	// at zero temperature for determinism.
	CallClassify
)

// ProviderConfig holds the configuration for one OpenAI-compatible provider.
// Keys and model names are passed in explicitly so providers stay swappable
// and mockable in tests.
type ProviderConfig struct {
	Name          string
	BaseURL       string
	APIKey        string
	ChatModel     string
	ClassifyModel string // falls back to ChatModel when empty
	Timeout       time.Duration
	MaxTokens     int
}

// Completer is a single completion backend.
type Completer interface {
	Name() string
	Complete(ctx context.Context, kind CallKind, messages []Message) (string, error)
}

// Provider calls one OpenAI-compatible chat completion endpoint.
type Provider struct {
	cfg    ProviderConfig
	client *openai.Client
}

// NewProvider creates a provider from its configuration.
func NewProvider(cfg ProviderConfig) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.ClassifyModel == "" {
		cfg.ClassifyModel = cfg.ChatModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *Provider) Name() string {
	return p.cfg.Name
}

// Complete performs a single chat completion bounded by the provider timeout.
func (p *Provider) Complete(ctx context.Context, kind CallKind, messages []Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	model := p.cfg.ChatModel
	// go-openai omits a zero Temperature from the request body; the smallest
	// positive value pins classification calls to deterministic sampling.
	temperature := float32(0.3)
	if kind == CallClassify {
		model = p.cfg.ClassifyModel
		temperature = 1e-8
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature,
		MaxTokens:   p.cfg.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(callCtx, req)
	if err != nil {
		return "", errors.Wrapf(err, "provider %s", p.cfg.Name)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Errorf("provider %s returned no choices", p.cfg.Name)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return out
}

var _ Completer = (*Provider)(nil)
