package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meal-planner/internal/config"
)

const (
	groqAPIURL       = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel = "llama-3.3-70b-versatile"
)

// GroqClient is a TextGenerator backed by the Groq chat completions API.
type GroqClient struct {
	apiKey      string
	apiURL      string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config, temperature float64) *GroqClient {
	model := cfg.GroqModel
	if model == "" {
		model = defaultGroqModel
	}
	return &GroqClient{
		apiKey:      cfg.GroqAPIKey,
		apiURL:      groqAPIURL,
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateContent sends a prompt to the Groq model and returns the generated text.
func (c *GroqClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	jsonBody, err := json.Marshal(groqRequest{
		Model:          c.model,
		Messages:       []groqMessage{{Role: "user", Content: prompt}},
		Temperature:    c.temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(groqResp.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: groqResp.Choices[0].Message.Content,
		Usage: TokenUsage{
			PromptTokens:     groqResp.Usage.PromptTokens,
			CompletionTokens: groqResp.Usage.CompletionTokens,
			TotalTokens:      groqResp.Usage.TotalTokens,
			Model:            c.model,
		},
	}, nil
}
