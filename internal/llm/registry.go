package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ProviderFactory creates providers.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// registry is filled by the provider files' init functions.
var registry = map[string]ProviderFactory{}

var defaultModels = map[string]string{
	"anthropic":  "claude-opus-4-5-20251101",
	"openai":     "gpt-4o",
	"openrouter": "xiaomi/mimo-v2-flash:free",
	"ollama":     "llama3.2",
}

// RegisterProvider adds a provider factory under a name.
func RegisterProvider(name string, factory ProviderFactory) {
	registry[name] = factory
}

// NewProvider creates a provider by name.
func NewProvider(name string, cfg ProviderConfig) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s (available: %s)",
			name, strings.Join(AvailableProviders(), ", "))
	}
	return factory(cfg)
}

// AvailableProviders returns the registered provider names, sorted.
func AvailableProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectProvider picks a provider from the API keys present in the
// environment. OpenRouter is preferred for its free models, then
// Anthropic and OpenAI; a local Ollama needs no key and is the fallback.
func DetectProvider() (provider string, apiKey string) {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		return "openrouter", key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return "anthropic", key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return "openai", key
	}
	return "ollama", ""
}

// GetDefaultModel returns the default model for a provider, or "" for an
// unknown one.
func GetDefaultModel(provider string) string {
	return defaultModels[provider]
}
