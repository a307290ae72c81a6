package genai

import (
	"context"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/AmeRaino/dompick/internal/logger"
)

// Anthropic streams completions from the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
	key    string
}

// NewAnthropic creates an Anthropic generator. A missing API key does not
// fail construction; the generator reports unavailable and yields the
// credential notice when invoked anyway.
func NewAnthropic(cfg Config) *Anthropic {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}

	model := cfg.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
		key:    cfg.APIKey,
	}
}

// Generate streams a completion, delivering text deltas as chunks.
func (a *Anthropic) Generate(ctx context.Context, req Request) Stream {
	if !a.Available() {
		return singleChunk(credentialNotice(a.Name(), "ANTHROPIC_API_KEY"))
	}

	system, rest := splitSystem(req.Messages)

	messages := make([]anthropic.MessageParam, 0, len(rest))
	for _, msg := range rest {
		switch msg.Role {
		case RoleUser:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	p := newPipe()
	go func() {
		defer p.finish()

		stream := a.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch delta := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if !p.push(delta.Text) {
						return
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			if ctx.Err() != nil {
				p.fail(ctx.Err())
				return
			}
			logger.Warn("anthropic stream failed", "model", a.model, "error", err)
			p.push(failureNotice(err))
		}
	}()
	return p
}

// Name returns the provider identifier.
func (a *Anthropic) Name() string {
	return "anthropic"
}

// Model returns the configured model name.
func (a *Anthropic) Model() string {
	return a.model
}

// Available reports whether an API key is configured.
func (a *Anthropic) Available() bool {
	return a.key != ""
}
