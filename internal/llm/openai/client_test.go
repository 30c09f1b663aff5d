package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteJSON(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "secret")
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"answer\":\"yes\"}"}}]}`))
	}))
	defer server.Close()

	c, err := NewClient(Config{BaseURL: server.URL, APIKeyEnv: "TEST_LLM_KEY", Model: "test-model"})
	require.NoError(t, err)
	out, err := c.CompleteJSON(context.Background(), "a prompt", 0.1, 256)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"yes"}`, out)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, 0.1, gotReq.Temperature)
	assert.Equal(t, 256, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "a prompt", gotReq.Messages[1].Content)
}

func TestCompleteJSONErrors(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "secret")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, err := NewClient(Config{BaseURL: server.URL, APIKeyEnv: "TEST_LLM_KEY"})
	require.NoError(t, err)
	_, err = c.CompleteJSON(context.Background(), "a prompt", 0, 0)
	assert.Error(t, err)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_LLM_KEY"})
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"{\"a\":1}":                        `{"a":1}`,
		"```json\n{\"a\":1}\n```":          `{"a":1}`,
		"```\n{\"a\":1}\n```":              `{"a":1}`,
		"  ```json\n{\"a\": [1,2]}\n``` ":  `{"a": [1,2]}`,
		"plain prose, not JSON":            "plain prose, not JSON",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripCodeFence(in), "%q", in)
	}
}
