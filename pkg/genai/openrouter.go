package genai

import (
	"context"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter streams completions through OpenRouter's OpenAI-compatible
// API, which routes to hundreds of upstream models.
type OpenRouter struct {
	client openai.Client
	model  string
	key    string
}

// NewOpenRouter creates an OpenRouter generator. A missing API key does
// not fail construction; the generator reports unavailable and yields the
// credential notice when invoked anyway.
func NewOpenRouter(cfg Config) *OpenRouter {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	// OpenRouter-specific attribution headers
	if cfg.HTTPReferer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.HTTPReferer))
	}
	if cfg.AppTitle != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppTitle))
	}

	model := cfg.Model
	if model == "" {
		model = "openrouter/auto"
	}

	return &OpenRouter{
		client: openai.NewClient(opts...),
		model:  model,
		key:    cfg.APIKey,
	}
}

// Generate streams a completion, delivering content deltas as chunks.
func (o *OpenRouter) Generate(ctx context.Context, req Request) Stream {
	if !o.Available() {
		return singleChunk(credentialNotice(o.Name(), "OPENROUTER_API_KEY"))
	}
	return chatStream(ctx, o.client, o.Name(), o.model, req)
}

// Name returns the provider identifier.
func (o *OpenRouter) Name() string {
	return "openrouter"
}

// Model returns the configured model name.
func (o *OpenRouter) Model() string {
	return o.model
}

// Available reports whether an API key is configured.
func (o *OpenRouter) Available() bool {
	return o.key != ""
}
