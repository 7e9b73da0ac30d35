package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the configuration to start the concierge server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Driver is the database driver (postgres or sqlite)
	Driver string
	// DSN points to the relational store holding catalog, knowledge and audit data
	DSN string
	// Version is the current version of the server
	Version string

	// Completion provider configuration, tried in order: Groq, OpenRouter, Ollama.
	GroqAPIKey          string
	GroqBaseURL         string // default: https://api.groq.com/openai/v1
	GroqChatModel       string // default: llama-3.3-70b-versatile
	GroqClassifyModel   string // default: llama3-8b-8192
	OpenRouterAPIKey    string
	OpenRouterBaseURL   string // default: https://openrouter.ai/api/v1
	OpenRouterChatModel string // default: openai/gpt-oss-20b:free
	OllamaBaseURL       string // OpenAI-compatible endpoint, e.g. http://localhost:11434/v1
	OllamaChatModel     string // default: gemma2:2b

	// Embedding configuration for the knowledge index.
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string // default: text-embedding-3-small
	EmbeddingDims    int    // default: 1536

	// Operator notification channel (Fonnte WhatsApp gateway).
	FonnteAPIKey    string
	FonnteBaseURL   string // default: https://api.fonnte.com
	OperatorNumber  string // admin WhatsApp number receiving escalations
	NotifyTimeout   time.Duration
	ProviderTimeout time.Duration

	// Dialogue state tuning.
	SessionTTL time.Duration // default: 15m
	HistoryTTL time.Duration // default: 4h
	CatalogTTL time.Duration // default: 5m
	RetrieveK  int           // default: 3
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// HasCompletionProvider reports whether at least one completion provider is configured.
func (p *Profile) HasCompletionProvider() bool {
	return p.GroqAPIKey != "" || p.OpenRouterAPIKey != "" || p.OllamaBaseURL != ""
}

// FromEnv loads configuration from CONCIERGE_* environment variables via viper.
func FromEnv(version string) *Profile {
	v := viper.New()
	v.SetEnvPrefix("concierge")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "dev")
	v.SetDefault("addr", "")
	v.SetDefault("port", 8008)
	v.SetDefault("driver", "sqlite")
	v.SetDefault("dsn", "concierge_dev.db")

	v.SetDefault("groq_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq_chat_model", "llama-3.3-70b-versatile")
	v.SetDefault("groq_classify_model", "llama3-8b-8192")
	v.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter_chat_model", "openai/gpt-oss-20b:free")
	v.SetDefault("ollama_chat_model", "gemma2:2b")

	v.SetDefault("embedding_base_url", "https://api.openai.com/v1")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("embedding_dims", 1536)

	v.SetDefault("fonnte_base_url", "https://api.fonnte.com")
	v.SetDefault("notify_timeout", 10*time.Second)
	v.SetDefault("provider_timeout", 15*time.Second)

	v.SetDefault("session_ttl", 15*time.Minute)
	v.SetDefault("history_ttl", 4*time.Hour)
	v.SetDefault("catalog_ttl", 5*time.Minute)
	v.SetDefault("retrieve_k", 3)

	return &Profile{
		Mode:    v.GetString("mode"),
		Addr:    v.GetString("addr"),
		Port:    v.GetInt("port"),
		Driver:  v.GetString("driver"),
		DSN:     v.GetString("dsn"),
		Version: version,

		GroqAPIKey:          v.GetString("groq_api_key"),
		GroqBaseURL:         v.GetString("groq_base_url"),
		GroqChatModel:       v.GetString("groq_chat_model"),
		GroqClassifyModel:   v.GetString("groq_classify_model"),
		OpenRouterAPIKey:    v.GetString("openrouter_api_key"),
		OpenRouterBaseURL:   v.GetString("openrouter_base_url"),
		OpenRouterChatModel: v.GetString("openrouter_chat_model"),
		OllamaBaseURL:       v.GetString("ollama_base_url"),
		OllamaChatModel:     v.GetString("ollama_chat_model"),

		EmbeddingAPIKey:  v.GetString("embedding_api_key"),
		EmbeddingBaseURL: v.GetString("embedding_base_url"),
		EmbeddingModel:   v.GetString("embedding_model"),
		EmbeddingDims:    v.GetInt("embedding_dims"),

		FonnteAPIKey:    v.GetString("fonnte_api_key"),
		FonnteBaseURL:   v.GetString("fonnte_base_url"),
		OperatorNumber:  v.GetString("operator_whatsapp_number"),
		NotifyTimeout:   v.GetDuration("notify_timeout"),
		ProviderTimeout: v.GetDuration("provider_timeout"),

		SessionTTL: v.GetDuration("session_ttl"),
		HistoryTTL: v.GetDuration("history_ttl"),
		CatalogTTL: v.GetDuration("catalog_ttl"),
		RetrieveK:  v.GetInt("retrieve_k"),
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Driver != "postgres" && p.Driver != "sqlite" {
		return errors.Errorf("unsupported driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}
	if p.DSN == "" {
		return errors.New("dsn is required")
	}
	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.SessionTTL <= 0 {
		p.SessionTTL = 15 * time.Minute
	}
	if p.HistoryTTL <= 0 {
		p.HistoryTTL = 4 * time.Hour
	}
	if p.CatalogTTL <= 0 {
		p.CatalogTTL = 5 * time.Minute
	}
	if p.RetrieveK <= 0 {
		p.RetrieveK = 3
	}

	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}
