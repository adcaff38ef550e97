package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/agentcy/internal/domain/ai"
)

func TestGenerateReturnsFirstChoice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 2048, body["max_tokens"])
		assert.InDelta(t, 0.7, body["temperature"], 0.0001)
		assert.InDelta(t, 0.95, body["top_p"], 0.0001)
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "SYSTEM", msgs[0].(map[string]any)["content"])
		assert.Equal(t, "USER", msgs[1].(map[string]any)["content"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"FOO"},"finish_reason":"stop"}]}`))
	}))
	defer ts.Close()

	c := NewClient("test-key", ts.URL+"/v1", "gpt-4o-mini")
	text, err := c.Generate(context.Background(), "SYSTEM", "USER")
	require.NoError(t, err)
	assert.Equal(t, "FOO", text)
}

func TestGenerateNoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer ts.Close()

	text, err := NewClient("k", ts.URL+"/v1", "").Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, ai.NoResponseText, text)
}

func TestGenerateAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer ts.Close()

	_, err := NewClient("k", ts.URL+"/v1", "").Generate(context.Background(), "s", "u")
	var gwErr *ai.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusInternalServerError, gwErr.Status)
}

func TestGenerateUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewClient("k", ts.URL+"/v1", "")
	ts.Close()

	_, err := c.Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ai.ErrGatewayUnavailable)
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, isReasoningModel("o3-2025-04-16"))
	assert.True(t, isReasoningModel("gpt-5-mini"))
	assert.False(t, isReasoningModel("gpt-4o-mini"))
}
