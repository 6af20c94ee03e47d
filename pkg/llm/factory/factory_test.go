package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigured(t *testing.T) {
	cases := []struct {
		name string
		cfg  ProviderConfig
		want bool
	}{
		{"ai-service with base url", ProviderConfig{Type: "ai-service", BaseURL: "http://localhost:8001"}, true},
		{"ai-service without base url", ProviderConfig{Type: "ai-service"}, false},
		{"mistral with key", ProviderConfig{Type: "mistral", APIKey: "sk-test"}, true},
		{"mistral without key", ProviderConfig{Type: "mistral"}, false},
		{"openai with key", ProviderConfig{Type: "openai", APIKey: "sk-test"}, true},
		{"unknown type", ProviderConfig{Type: "gemini", APIKey: "sk-test"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.Configured())
		})
	}
}

func TestNewChainDropsUnconfiguredProviders(t *testing.T) {
	c, err := NewChain([]ProviderConfig{
		{Type: "ai-service", BaseURL: "http://localhost:8001"},
		{Type: "mistral"},
		{Type: "openai", APIKey: "sk-test"},
	})
	require.NoError(t, err)

	providers := c.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, "ai-service", providers[0].Name())
	assert.Equal(t, "openai", providers[1].Name())
}

func TestNewChainRequiresAtLeastOneProvider(t *testing.T) {
	_, err := NewChain([]ProviderConfig{
		{Type: "mistral"},
		{Type: "openai"},
	})
	assert.Error(t, err)
}

func TestNewProviderRejectsUnknownType(t *testing.T) {
	_, err := NewProvider(ProviderConfig{Type: "gemini"})
	assert.Error(t, err)
}
