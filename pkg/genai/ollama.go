package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AmeRaino/dompick/internal/logger"
)

// DefaultOllamaURL is the default Ollama API endpoint.
const DefaultOllamaURL = "http://localhost:11434"

// Ollama streams completions from a local Ollama instance. Ollama needs no
// API key; availability means a reachable daemon.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates an Ollama generator.
func NewOllama(cfg Config) *Ollama {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}

	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaChunk is one line of the streaming NDJSON response.
type ollamaChunk struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// Generate streams a completion, decoding Ollama's NDJSON chunk lines.
func (o *Ollama) Generate(ctx context.Context, req Request) Stream {
	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ollamaMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	body, err := json.Marshal(ollamaRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   true,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return singleChunk(failureNotice(err))
	}

	p := newPipe()
	go func() {
		defer p.finish()

		httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			p.push(failureNotice(err))
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := o.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				p.fail(ctx.Err())
				return
			}
			logger.Warn("ollama request failed", "url", o.baseURL, "error", err)
			p.push(failureNotice(err))
			return
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			p.push(failureNotice(fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(bodyBytes))))
			return
		}

		dec := json.NewDecoder(resp.Body)
		for {
			var chunk ollamaChunk
			if err := dec.Decode(&chunk); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				if ctx.Err() != nil {
					p.fail(ctx.Err())
					return
				}
				p.push(failureNotice(err))
				return
			}
			if chunk.Error != "" {
				p.push(failureNotice(errors.New(chunk.Error)))
				return
			}
			if !p.push(chunk.Message.Content) {
				return
			}
			if chunk.Done {
				return
			}
		}
	}()
	return p
}

// Name returns the provider identifier.
func (o *Ollama) Name() string {
	return "ollama"
}

// Model returns the configured model name.
func (o *Ollama) Model() string {
	return o.model
}

// Available returns true if Ollama is running and accessible.
func (o *Ollama) Available() bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(o.baseURL + "/api/tags")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
