package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AmeRaino/dompick/internal/logger"
	"github.com/AmeRaino/dompick/pkg/fetch"
	"github.com/AmeRaino/dompick/pkg/genai"
)

// Default provider order when no --provider is given. Hosted providers
// with a configured key come first, Ollama closes the chain since it
// needs none.
var defaultProviderOrder = []string{"openrouter", "anthropic", "openai", "ollama"}

// stringSetting reads a per-command flag with config-file and environment
// fallback. Per-command flags are not viper-bound: several commands carry
// flags of the same name, and a shared binding would read whichever
// command registered last.
func stringSetting(cmd *cobra.Command, flag, viperKey string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return viper.GetString(viperKey)
}

// addProviderFlags registers the AI settings shared by the commands that
// talk to a provider.
func addProviderFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("provider", "p", "", "AI provider: anthropic, openai, openrouter, ollama (auto-detects from env vars)")
	flags.StringP("model", "m", "", "model name (provider-specific)")
	flags.StringP("api-key", "k", "", "API key (or use env var)")
	flags.String("base-url", "", "custom API base URL")
}

// buildGenerator assembles the AI collaborator. An explicit provider is
// built alone; otherwise every provider with a credential joins a
// fallback chain.
func buildGenerator(cmd *cobra.Command) genai.Generator {
	provider := stringSetting(cmd, "provider", "provider")

	cfg := genai.DefaultConfig()
	cfg.APIKey = stringSetting(cmd, "api-key", "api_key")
	cfg.BaseURL = stringSetting(cmd, "base-url", "base_url")
	cfg.Model = stringSetting(cmd, "model", "model")

	if provider != "" {
		gen, err := genai.New(provider, cfg)
		if err == nil {
			return gen
		}
		logger.Warn("unknown provider, falling back to auto-detection", "provider", provider, "error", err)
	}

	// A flag-supplied key or model is specific to one provider; chain
	// members read their own environment instead.
	chainCfg := genai.DefaultConfig()
	var gens []genai.Generator
	for _, name := range defaultProviderOrder {
		if name != "ollama" && !genai.HasAPIKey(name) {
			continue
		}
		gen, err := genai.New(name, chainCfg)
		if err != nil {
			continue
		}
		gens = append(gens, gen)
	}
	return genai.NewChain(gens...)
}

// addFetchFlags registers the page retrieval settings shared by the
// commands that load a URL.
func addFetchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("fetch-mode", "static", "fetch mode: static, relay")
	flags.String("relay-url", "", "relay service URL for challenge-protected pages (e.g. http://localhost:8191/v1)")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("user-agent", "", "user agent override")
}

// buildFetcher creates the fetcher selected by --fetch-mode.
func buildFetcher(cmd *cobra.Command) (fetch.Fetcher, error) {
	mode, _ := cmd.Flags().GetString("fetch-mode")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ua, _ := cmd.Flags().GetString("user-agent")

	switch mode {
	case "relay":
		endpoint := stringSetting(cmd, "relay-url", "relay_url")
		if endpoint == "" {
			return nil, fmt.Errorf("fetch-mode relay needs --relay-url")
		}
		cfg := fetch.DefaultRelayConfig()
		cfg.Endpoint = endpoint
		if timeout > 0 {
			cfg.Timeout = timeout
		}
		return fetch.NewRelay(cfg), nil

	case "static", "":
		cfg := fetch.DefaultStaticConfig()
		if ua != "" {
			cfg.UserAgent = ua
		}
		if timeout > 0 {
			cfg.Timeout = timeout
		}
		return fetch.NewStatic(cfg), nil
	}

	return nil, fmt.Errorf("unknown fetch mode: %s (use 'static' or 'relay')", mode)
}

// fetchOptions carries per-request overrides into the session.
func fetchOptions(cmd *cobra.Command) fetch.Options {
	ua, _ := cmd.Flags().GetString("user-agent")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return fetch.Options{UserAgent: ua, Timeout: timeout}
}

// snapshotLimit parses the --snapshot-limit flag (e.g. 300KB, 1MB,
// 0=unlimited).
func snapshotLimit(cmd *cobra.Command) (int, error) {
	raw, _ := cmd.Flags().GetString("snapshot-limit")
	if strings.TrimSpace(raw) == "" || raw == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid snapshot-limit %q: %w", raw, err)
	}
	return int(n), nil
}
