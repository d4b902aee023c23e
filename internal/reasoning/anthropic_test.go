package reasoning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", "model", 1024, time.Second)
	assert.Error(t, err)
}

func TestClient_Invoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "system prompt", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user payload", req.Messages[0].Content)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "the briefing"}},
		})
	}))
	defer srv.Close()

	c, err := New("test-key", "claude-sonnet-4-5-20250929", 4096, 5*time.Second)
	require.NoError(t, err)
	c.endpoint = srv.URL

	text, err := c.Invoke(context.Background(), "system prompt", "user payload")
	require.NoError(t, err)
	assert.Equal(t, "the briefing", text)
}

func TestClient_InvokeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c, err := New("test-key", "model", 1024, 5*time.Second)
	require.NoError(t, err)
	c.endpoint = srv.URL

	_, err = c.Invoke(context.Background(), "s", "u")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestClient_InvokeEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c, err := New("test-key", "model", 1024, 5*time.Second)
	require.NoError(t, err)
	c.endpoint = srv.URL

	_, err = c.Invoke(context.Background(), "s", "u")
	assert.Error(t, err)
}
