package genai

import (
	"context"
	"strings"
)

// noGeneratorNotice is the single chunk yielded when no generator in the
// chain is available.
const noGeneratorNotice = "// No AI provider is available.\n" +
	"// Set ANTHROPIC_API_KEY, OPENAI_API_KEY or OPENROUTER_API_KEY,\n" +
	"// or start a local Ollama instance.\n"

// Chain delegates to the first available generator. This gives provider
// failover the same shape as a single generator, so the session never
// cares which backend answered.
type Chain struct {
	generators []Generator
}

// NewChain creates a chain from the given generators, tried in order.
func NewChain(generators ...Generator) *Chain {
	return &Chain{generators: generators}
}

// Generate delegates to the first available generator. With none
// available it yields an explanatory chunk instead of failing.
func (c *Chain) Generate(ctx context.Context, req Request) Stream {
	if g := c.First(); g != nil {
		return g.Generate(ctx, req)
	}
	return singleChunk(noGeneratorNotice)
}

// Name returns the chain members joined in order.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.generators))
	for _, g := range c.generators {
		names = append(names, g.Name())
	}
	return "chain(" + strings.Join(names, "->") + ")"
}

// Model returns the model of the first available generator.
func (c *Chain) Model() string {
	if g := c.First(); g != nil {
		return g.Model()
	}
	return ""
}

// Available returns true if at least one generator is available.
func (c *Chain) Available() bool {
	return c.First() != nil
}

// First returns the first available generator, or nil if none is.
func (c *Chain) First() Generator {
	for _, g := range c.generators {
		if g.Available() {
			return g
		}
	}
	return nil
}
