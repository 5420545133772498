package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appcfg "github.com/nadi-health/core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletions(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	gen, err := NewGenerator(appcfg.AIConfig{
		Provider:  appcfg.AIProviderDeepSeek,
		APIKey:    "sk-test",
		Endpoint:  srv.URL,
		Model:     "deepseek-chat",
		MaxTokens: 4096,
	})
	require.NoError(t, err)

	out, err := gen.Complete(context.Background(), "sys", "user", 0.3)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	assert.Equal(t, "deepseek-chat", got["model"])
	assert.Equal(t, 0.3, got["temperature"])
	assert.Equal(t, float64(4096), got["max_tokens"])
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
}

func TestChatCompletionsCompatiblePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	gen, err := NewGenerator(appcfg.AIConfig{Provider: appcfg.AIProviderOpenAICompatible, APIKey: "k", Endpoint: srv.URL + "/v1/"})
	require.NoError(t, err)
	out, err := gen.Complete(context.Background(), "", "hi", 0.7)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestChatCompletionsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen, err := NewGenerator(appcfg.AIConfig{Provider: appcfg.AIProviderDeepSeek, APIKey: "k", Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = gen.Complete(context.Background(), "s", "u", 0.7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	noKey, err := NewGenerator(appcfg.AIConfig{Provider: appcfg.AIProviderDeepSeek, Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = noKey.Complete(context.Background(), "s", "u", 0.7)
	assert.EqualError(t, err, "AI provider api key is empty")
}

func TestNewGeneratorRejectsUnknownProvider(t *testing.T) {
	_, err := NewGenerator(appcfg.AIConfig{Provider: "mystery"})
	assert.Error(t, err)
}

func TestNormalizeEndpoints(t *testing.T) {
	assert.Equal(t, "https://gw.example.com", normalizeOpenAICompatibleEndpoint("https://gw.example.com/v1/"))
	assert.Equal(t, "https://api.openai.com", normalizeOpenAICompatibleEndpoint(""))
	assert.Equal(t, "https://gw.example.com/v1", normalizeOpenAIBaseURL("https://gw.example.com"))
	assert.Equal(t, "", normalizeOpenAIBaseURL(""))
}
