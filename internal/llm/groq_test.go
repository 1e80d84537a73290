package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"meal-planner/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroqClient(url string) *GroqClient {
	c := NewGroqClient(&config.Config{GroqAPIKey: "groq_key"}, 0.2)
	c.apiURL = url
	return c
}

func TestGroqGenerateContent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer groq_key", r.Header.Get("Authorization"))

			var req groqRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, defaultGroqModel, req.Model)
			assert.Equal(t, "json_object", req.ResponseFormat["type"])
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "hello", req.Messages[0].Content)

			w.Write([]byte(`{
				"choices": [{"message": {"content": "{\"ok\": true}"}}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
			}`))
		}))
		defer server.Close()

		resp, err := newTestGroqClient(server.URL).GenerateContent(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, `{"ok": true}`, resp.Content)
		assert.Equal(t, 12, resp.Usage.PromptTokens)
		assert.Equal(t, 5, resp.Usage.CompletionTokens)
		assert.Equal(t, defaultGroqModel, resp.Usage.Model)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("slow down"))
		}))
		defer server.Close()

		_, err := newTestGroqClient(server.URL).GenerateContent(context.Background(), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=429")
	})

	t.Run("NoChoices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		_, err := newTestGroqClient(server.URL).GenerateContent(context.Background(), "hello")
		assert.EqualError(t, err, "no content generated")
	})
}
