package factory

import (
	"fmt"

	"notesquest-be/pkg/llm"
	"notesquest-be/pkg/llm/aiservice"
	"notesquest-be/pkg/llm/chain"
	"notesquest-be/pkg/llm/mistral"
	"notesquest-be/pkg/llm/openai"
)

type ProviderConfig struct {
	Type    string // "ai-service" | "mistral" | "openai"
	BaseURL string
	APIKey  string
	Model   string
}

// Configured reports whether the entry has what its provider type
// needs. Hosted APIs without a key are treated as absent rather than
// misconfigured, so a deployment can list more fallbacks than it has
// credentials for.
func (c ProviderConfig) Configured() bool {
	switch c.Type {
	case "ai-service":
		return c.BaseURL != ""
	case "mistral", "openai":
		return c.APIKey != ""
	default:
		return false
	}
}

func NewProvider(cfg ProviderConfig) (llm.Provider, error) {
	switch cfg.Type {
	case "ai-service":
		return aiservice.NewAIServiceProvider(cfg.BaseURL), nil
	case "mistral":
		return mistral.NewMistralProvider(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "openai":
		return openai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Type)
	}
}

// NewChain builds the fallback chain from config order, dropping
// unconfigured entries. At least one configured provider is required.
func NewChain(cfgs []ProviderConfig, opts ...chain.Option) (*chain.Chain, error) {
	providers := make([]llm.Provider, 0, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.Configured() {
			continue
		}
		provider, err := NewProvider(cfg)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	return chain.New(providers, opts...), nil
}
