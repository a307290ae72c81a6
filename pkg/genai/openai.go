package genai

import (
	"context"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/AmeRaino/dompick/internal/logger"
)

// OpenAI streams completions from the OpenAI Chat Completions API.
type OpenAI struct {
	client openai.Client
	model  string
	key    string
}

// NewOpenAI creates an OpenAI generator. A missing API key does not fail
// construction; the generator reports unavailable and yields the
// credential notice when invoked anyway.
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		key:    cfg.APIKey,
	}
}

// Generate streams a completion, delivering content deltas as chunks.
func (o *OpenAI) Generate(ctx context.Context, req Request) Stream {
	if !o.Available() {
		return singleChunk(credentialNotice(o.Name(), "OPENAI_API_KEY"))
	}
	return chatStream(ctx, o.client, o.Name(), o.model, req)
}

// Name returns the provider identifier.
func (o *OpenAI) Name() string {
	return "openai"
}

// Model returns the configured model name.
func (o *OpenAI) Model() string {
	return o.model
}

// Available reports whether an API key is configured.
func (o *OpenAI) Available() bool {
	return o.key != ""
}

// chatStream runs one streaming chat completion against an OpenAI-style
// API. Shared with the OpenRouter generator, which speaks the same wire
// protocol through a different base URL.
func chatStream(ctx context.Context, client openai.Client, provider, model string, req Request) Stream {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(req.Temperature),
	}

	p := newPipe()
	go func() {
		defer p.finish()

		stream := client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if !p.push(chunk.Choices[0].Delta.Content) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			if ctx.Err() != nil {
				p.fail(ctx.Err())
				return
			}
			logger.Warn("chat stream failed", "provider", provider, "model", model, "error", err)
			p.push(failureNotice(err))
		}
	}()
	return p
}
