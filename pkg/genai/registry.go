package genai

import (
	"fmt"
	"os"
)

// Factory creates a generator from config.
type Factory func(cfg Config) Generator

// DefaultModels maps provider names to their default models.
var DefaultModels = map[string]string{
	"anthropic":  "claude-sonnet-4-20250514",
	"openai":     "gpt-4o",
	"openrouter": "openrouter/auto",
	"ollama":     "llama3.2",
}

var registry = map[string]Factory{}

func init() {
	// Register all built-in providers
	Register("anthropic", func(cfg Config) Generator { return NewAnthropic(cfg) })
	Register("openai", func(cfg Config) Generator { return NewOpenAI(cfg) })
	Register("openrouter", func(cfg Config) Generator { return NewOpenRouter(cfg) })
	Register("ollama", func(cfg Config) Generator { return NewOllama(cfg) })
}

// New creates a generator by name.
func New(name string, cfg Config) (Generator, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s (available: anthropic, openai, openrouter, ollama)", name)
	}
	return factory(cfg), nil
}

// Register adds a custom generator factory.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// Providers returns the list of registered provider names.
func Providers() []string {
	providers := make([]string, 0, len(registry))
	for name := range registry {
		providers = append(providers, name)
	}
	return providers
}

// Detect auto-detects the best provider based on available API keys.
// Returns the provider name and API key.
// Priority: OPENROUTER_API_KEY > ANTHROPIC_API_KEY > OPENAI_API_KEY > ollama (no key needed)
func Detect() (provider string, apiKey string) {
	// Check OpenRouter first (often has free models)
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		return "openrouter", key
	}

	// Check Anthropic
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return "anthropic", key
	}

	// Check OpenAI
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return "openai", key
	}

	// Fall back to Ollama (no key required)
	return "ollama", ""
}

// DefaultModel returns the default model for a provider.
func DefaultModel(provider string) string {
	if model, ok := DefaultModels[provider]; ok {
		return model
	}
	return ""
}

// IsRegistered returns true if a provider is registered.
func IsRegistered(name string) bool {
	_, ok := registry[name]
	return ok
}

// providerEnvKeys maps provider names to their API key environment variables.
var providerEnvKeys = map[string]string{
	"openrouter": "OPENROUTER_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"openai":     "OPENAI_API_KEY",
}

// HasAPIKey checks if an API key environment variable is set for the given provider.
func HasAPIKey(provider string) bool {
	if envKey, ok := providerEnvKeys[provider]; ok {
		return os.Getenv(envKey) != ""
	}
	return false
}
