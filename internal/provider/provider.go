package provider

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	ErrRateLimit       = errors.New("rate limit exceeded")
	ErrTimeout         = errors.New("request timed out")
	ErrAuth            = errors.New("authentication failed")
	ErrInvalidResponse = errors.New("invalid response from provider")
)

// Completer generates a text completion from a prompt in one shot.
type Completer interface {
	// Complete returns a text completion for the given prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Chunk is one incremental fragment of a streamed completion. A non-nil Err
// means the stream failed; no further chunks follow it.
type Chunk struct {
	Text string
	Err  error
}

// Streamer generates a completion incrementally. The returned channel yields
// chunks in provider order and is closed when the stream ends, after the
// error chunk if the stream failed. The initial error covers request
// construction and dispatch only.
type Streamer interface {
	Stream(ctx context.Context, prompt string) (<-chan Chunk, error)
}

// Pinger issues a minimal authenticated round trip against the provider
// endpoint without mutating anything. Used for connection tests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client is a full provider client.
type Client interface {
	Completer
	Streamer
	Pinger
}

// Kind identifies a provider family.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindGoogle    Kind = "google"
	KindDeepSeek  Kind = "deepseek"
	KindAzure     Kind = "azure"
	KindCustom    Kind = "custom" // any OpenAI-compatible endpoint
)

// Kinds lists all supported provider kinds.
func Kinds() []Kind {
	return []Kind{KindOpenAI, KindAnthropic, KindGoogle, KindDeepSeek, KindAzure, KindCustom}
}

// DisplayName returns a human-readable provider name. The label personalizes
// custom providers.
func (k Kind) DisplayName(label string) string {
	switch k {
	case KindOpenAI:
		return "OpenAI"
	case KindAnthropic:
		return "Anthropic (Claude)"
	case KindGoogle:
		return "Google (Gemini)"
	case KindDeepSeek:
		return "DeepSeek"
	case KindAzure:
		return "Azure OpenAI"
	case KindCustom:
		if label != "" {
			return fmt.Sprintf("Custom (%s)", label)
		}
		return "Custom"
	default:
		return string(k)
	}
}

// DefaultBaseURL returns the provider's default endpoint. Azure and custom
// providers have no default; the user must supply one.
func (k Kind) DefaultBaseURL() string {
	switch k {
	case KindOpenAI:
		return "https://api.openai.com/v1"
	case KindAnthropic:
		return "https://api.anthropic.com"
	case KindGoogle:
		return "https://generativelanguage.googleapis.com/v1beta"
	case KindDeepSeek:
		return "https://api.deepseek.com"
	default:
		return ""
	}
}

// DefaultModel returns the provider's default model name.
func (k Kind) DefaultModel() string {
	switch k {
	case KindOpenAI:
		return defaultOpenAIModel
	case KindAnthropic:
		return defaultAnthropicModel
	case KindGoogle:
		return defaultGeminiModel
	case KindDeepSeek:
		return "deepseek-chat"
	case KindAzure:
		return "gpt-4o"
	default:
		return ""
	}
}

// RequiresBaseURL reports whether the kind has no usable default endpoint.
func (k Kind) RequiresBaseURL() bool {
	return k == KindAzure || k == KindCustom
}

// Config holds the settings needed to build a Client.
type Config struct {
	Kind    Kind
	BaseURL string
	APIKey  string
	Model   string
}

// New builds a Client for the configured provider kind. DeepSeek and custom
// providers speak the OpenAI wire protocol against their own base URL.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrAuth)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = cfg.Kind.DefaultBaseURL()
	}
	if cfg.Model == "" {
		cfg.Model = cfg.Kind.DefaultModel()
	}

	switch cfg.Kind {
	case KindOpenAI, KindDeepSeek, KindCustom:
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case KindAzure:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("azure provider requires a base URL")
		}
		return NewAzureClient(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case KindAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case KindGoogle:
		return NewGeminiClient(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported provider kind: %q", cfg.Kind)
	}
}
