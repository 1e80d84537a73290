package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/llm"
)

type stubTextGenerator struct {
	content string
	err     error
	prompt  string
}

func (s *stubTextGenerator) GenerateContent(_ context.Context, prompt string) (llm.ContentResponse, error) {
	s.prompt = prompt
	if s.err != nil {
		return llm.ContentResponse{}, s.err
	}
	return llm.ContentResponse{
		Content: s.content,
		Usage:   llm.TokenUsage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200, Model: "stub"},
	}, nil
}

func TestExtractor_Extract(t *testing.T) {
	post := PostData{
		ID:        "post-1",
		Title:     "Weeknight Chickpea Curry",
		UpdatedAt: "2026-03-01T12:00:00Z",
		SourceURL: "https://blog.test/chickpea-curry",
		HTML:      "<p>Simmer chickpeas in coconut milk.</p>",
	}

	t.Run("Success", func(t *testing.T) {
		gen := &stubTextGenerator{content: "```json\n" + `{
			"title": "Chickpea Curry",
			"ready_in_minutes": 35,
			"servings": 4,
			"dish_types": ["dinner", "main course"],
			"calories": 540, "protein": 18, "carbs": 62, "fat": 22,
			"ingredients": [{"name": "chickpeas", "amount": 400, "unit": "g"}],
			"difficulty": "Easy"
		}` + "\n```"}

		result, err := NewExtractor(gen).Extract(context.Background(), post)
		require.NoError(t, err)

		assert.Equal(t, "post-1", result.Recipe.ID)
		assert.Equal(t, "Chickpea Curry", result.Recipe.Title)
		assert.Equal(t, post.UpdatedAt, result.Recipe.UpdatedAt)
		assert.Equal(t, post.SourceURL, result.Recipe.SourceURL)
		assert.Equal(t, DifficultyEasy, result.Recipe.Difficulty)
		assert.True(t, result.Recipe.HasDishType("dinner"))
		assert.Equal(t, ExtractorAgentName, result.Meta.AgentName)
		assert.Equal(t, 200, result.Meta.Usage.TotalTokens)

		assert.Contains(t, gen.prompt, "Weeknight Chickpea Curry")
		assert.Contains(t, gen.prompt, post.SourceURL)
		assert.Contains(t, gen.prompt, "coconut milk")
	})

	t.Run("LLMError", func(t *testing.T) {
		gen := &stubTextGenerator{err: errors.New("quota exceeded")}

		_, err := NewExtractor(gen).Extract(context.Background(), post)
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		gen := &stubTextGenerator{content: "Sorry, I cannot help with that."}

		result, err := NewExtractor(gen).Extract(context.Background(), post)
		assert.ErrorContains(t, err, "failed to unmarshal LLM response")
		assert.Equal(t, 200, result.Meta.Usage.TotalTokens)
	})

	t.Run("NotARecipe", func(t *testing.T) {
		gen := &stubTextGenerator{content: `{"title": "", "ingredients": []}`}

		_, err := NewExtractor(gen).Extract(context.Background(), post)
		assert.ErrorContains(t, err, "extracted recipe is invalid")
	})
}
