package genai

import (
	"encoding/json"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/AmeRaino/dompick/internal/logger"
	"github.com/AmeRaino/dompick/pkg/target"
)

// ScriptSystemPrompt is the system prompt for scrape script generation.
const ScriptSystemPrompt = `You are an expert web scraping engineer. You write browser JavaScript that extracts structured data from web pages.

Respond with ONLY the JavaScript source. No explanations, no markdown fences.

Rules:
1. Define a function named extractData that takes the document as its only argument
2. extractData(document) must return an object matching the output schema
3. Use the provided CSS selectors as the primary way to locate each field
4. When a selector matches nothing, fall back to semantically similar elements
5. Fields that cannot be found get the value null, never a thrown error
6. Use only standard DOM APIs, no external libraries`

// ExplainSystemPrompt is the system prompt for element explanation.
const ExplainSystemPrompt = `You are a web page analyst. You describe what a page element contains and what role it plays on the page.

Respond with a short plain-text description, at most three sentences. No markdown, no code.`

// ScriptMessages builds the message sequence requesting an extraction
// script for the given targets against the prepared document.
func ScriptMessages(doc string, set *target.Set) []Message {
	var prompt strings.Builder

	prompt.WriteString("Write a JavaScript function extractData(document) that extracts the following fields from the page below.\n")

	prompt.WriteString("\n## Fields\n")
	prompt.WriteString(set.PromptBlock())

	if schemaJSON, err := json.MarshalIndent(set.JSONSchema(), "", "  "); err == nil {
		prompt.WriteString("\n## Output Schema\n")
		prompt.WriteString("The returned object must match this JSON schema:\n")
		prompt.WriteString("```json\n")
		prompt.Write(schemaJSON)
		prompt.WriteString("\n```\n")
	}

	prompt.WriteString("\n## Page Snapshot\n")
	prompt.WriteString("```html\n")
	prompt.WriteString(doc)
	prompt.WriteString("\n```\n")

	return []Message{
		{Role: RoleSystem, Content: ScriptSystemPrompt},
		{Role: RoleUser, Content: prompt.String()},
	}
}

// ExplainMessages builds the message sequence asking what the given
// element contains. The element HTML is converted to Markdown first,
// which reads better for the model than raw markup; conversion failures
// fall back to the raw HTML.
func ExplainMessages(outerHTML string) []Message {
	content := outerHTML
	if markdown, err := md.ConvertString(outerHTML); err == nil && strings.TrimSpace(markdown) != "" {
		content = markdown
	} else if err != nil {
		logger.Debug("markdown conversion failed, explaining raw HTML", "error", err)
	}

	var prompt strings.Builder
	prompt.WriteString("Describe this page element:\n\n")
	prompt.WriteString("```\n")
	prompt.WriteString(strings.TrimSpace(content))
	prompt.WriteString("\n```\n")

	return []Message{
		{Role: RoleSystem, Content: ExplainSystemPrompt},
		{Role: RoleUser, Content: prompt.String()},
	}
}
