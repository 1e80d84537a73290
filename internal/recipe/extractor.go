package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"meal-planner/internal/llm"
)

//go:embed extractor_prompt.md
var extractorPrompt string

var extractorTemplate = template.Must(template.New("extractor").Parse(extractorPrompt))

// ExtractorAgentName labels usage metrics recorded for extraction calls.
const ExtractorAgentName = "Extractor"

// ExtractorResult is the extracted recipe plus the cost of getting it.
type ExtractorResult struct {
	Recipe Recipe
	Meta   llm.AgentMeta
}

// Extractor turns raw post HTML into a catalog Recipe using an LLM.
type Extractor struct {
	textGen llm.TextGenerator
}

// NewExtractor creates a new Extractor.
func NewExtractor(textGen llm.TextGenerator) *Extractor {
	return &Extractor{textGen: textGen}
}

// Extract asks the model for a JSON recipe and stamps it with the post's
// identity. The returned Meta is filled whenever the model answered, even
// if the answer could not be used.
func (e *Extractor) Extract(ctx context.Context, data PostData) (ExtractorResult, error) {
	start := time.Now()

	prompt, err := buildExtractorPrompt(data)
	if err != nil {
		return ExtractorResult{}, err
	}

	llmResp, err := e.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ExtractorResult{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	result := ExtractorResult{
		Meta: llm.AgentMeta{
			AgentName: ExtractorAgentName,
			Usage:     llmResp.Usage,
			Latency:   time.Since(start),
		},
	}

	if err := json.Unmarshal([]byte(stripCodeFence(llmResp.Content)), &result.Recipe); err != nil {
		return result, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}

	result.Recipe.ID = data.ID
	result.Recipe.UpdatedAt = data.UpdatedAt
	if result.Recipe.SourceURL == "" {
		result.Recipe.SourceURL = data.SourceURL
	}
	result.Recipe.Difficulty = Difficulty(strings.ToLower(strings.TrimSpace(string(result.Recipe.Difficulty))))

	if err := result.Recipe.Validate(); err != nil {
		return result, fmt.Errorf("extracted recipe is invalid: %w", err)
	}
	return result, nil
}

func buildExtractorPrompt(data PostData) (string, error) {
	var buf bytes.Buffer
	if err := extractorTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render extractor prompt: %w", err)
	}
	return buf.String(), nil
}

// stripCodeFence removes a markdown code fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
