package genai

import (
	"context"
	"strings"
	"testing"
)

// --- credential short-circuit ---

func TestCloudProviders_MissingKeyYieldsSingleNotice(t *testing.T) {
	clearProviderKeys(t)

	tests := []struct {
		name   string
		gen    Generator
		envKey string
	}{
		{"anthropic", NewAnthropic(Config{}), "ANTHROPIC_API_KEY"},
		{"openai", NewOpenAI(Config{}), "OPENAI_API_KEY"},
		{"openrouter", NewOpenRouter(Config{}), "OPENROUTER_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.gen.Available() {
				t.Fatal("generator should be unavailable without a key")
			}

			s := tt.gen.Generate(context.Background(), Request{
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
			})
			chunks := drain(t, s)

			if len(chunks) != 1 {
				t.Fatalf("expected exactly one notice chunk, got %d: %v", len(chunks), chunks)
			}
			if !strings.Contains(chunks[0], "No API key configured") {
				t.Errorf("notice should explain the missing key, got %q", chunks[0])
			}
			if !strings.Contains(chunks[0], tt.envKey) {
				t.Errorf("notice should name %s, got %q", tt.envKey, chunks[0])
			}
			if err := s.Err(); err != nil {
				t.Errorf("credential notice is in-band, Err() should stay nil, got %v", err)
			}
		})
	}
}

func TestCloudProviders_AvailableWithKey(t *testing.T) {
	clearProviderKeys(t)

	if !NewAnthropic(Config{APIKey: "sk-test"}).Available() {
		t.Error("anthropic should be available with an explicit key")
	}

	t.Setenv("OPENAI_API_KEY", "sk-env")
	if !NewOpenAI(Config{}).Available() {
		t.Error("openai should pick the key up from the environment")
	}
}

// --- defaults ---

func TestProviderDefaults(t *testing.T) {
	clearProviderKeys(t)

	tests := []struct {
		gen       Generator
		wantName  string
		wantModel string
	}{
		{NewAnthropic(Config{}), "anthropic", "claude-sonnet-4-20250514"},
		{NewOpenAI(Config{}), "openai", "gpt-4o"},
		{NewOpenRouter(Config{}), "openrouter", "openrouter/auto"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if got := tt.gen.Name(); got != tt.wantName {
				t.Errorf("Name() = %q, want %q", got, tt.wantName)
			}
			if got := tt.gen.Model(); got != tt.wantModel {
				t.Errorf("Model() = %q, want %q", got, tt.wantModel)
			}
		})
	}
}

func TestProviderModelOverride(t *testing.T) {
	g := NewAnthropic(Config{Model: "claude-opus-4-20250514"})
	if g.Model() != "claude-opus-4-20250514" {
		t.Errorf("expected configured model, got %q", g.Model())
	}
}

// --- splitSystem ---

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
	})

	if system != "be brief" {
		t.Errorf("expected system prompt extracted, got %q", system)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 conversation messages, got %d", len(rest))
	}
	if rest[0].Role != RoleUser || rest[1].Role != RoleAssistant {
		t.Errorf("conversation order should be preserved, got %v", rest)
	}
}

func TestSplitSystem_NoSystemMessage(t *testing.T) {
	system, rest := splitSystem([]Message{{Role: RoleUser, Content: "hello"}})
	if system != "" {
		t.Errorf("expected empty system prompt, got %q", system)
	}
	if len(rest) != 1 {
		t.Errorf("expected the conversation untouched, got %v", rest)
	}
}

// --- notices ---

func TestCredentialNotice_IsAComment(t *testing.T) {
	notice := credentialNotice("anthropic", "ANTHROPIC_API_KEY")
	for _, line := range strings.Split(strings.TrimSpace(notice), "\n") {
		if !strings.HasPrefix(line, "//") {
			t.Errorf("notice lines should be JS comments, got %q", line)
		}
	}
}

func TestFailureNotice_IsAComment(t *testing.T) {
	notice := failureNotice(errString("boom"))
	trimmed := strings.TrimSpace(notice)
	if !strings.HasPrefix(trimmed, "//") {
		t.Errorf("failure notice should be a JS comment, got %q", trimmed)
	}
	if !strings.Contains(trimmed, "boom") {
		t.Errorf("failure notice should carry the error, got %q", trimmed)
	}
}
