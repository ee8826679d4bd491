// Package llm is the boundary to the generative-AI providers. The rest of
// the application only sees Completer; provider SDKs stay behind it.
package llm

import (
	"context"
	"fmt"

	"github.com/marcusvale/bidforge/internal/config"
)

// Request is one completion call: a rendered user prompt plus its optional
// system instruction.
type Request struct {
	System    string `json:"system,omitempty"`
	User      string `json:"user"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// New selects a provider from config. An empty API key for the selected
// provider is a configuration error, not a silent no-op client.
func New(cfg config.LLMConfig) (Completer, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("llm provider openai selected but OPENAI_API_KEY is empty")
		}
		return NewOpenAI(cfg.OpenAIKey, cfg.Model), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("llm provider anthropic selected but ANTHROPIC_API_KEY is empty")
		}
		return NewAnthropic(cfg.AnthropicKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
