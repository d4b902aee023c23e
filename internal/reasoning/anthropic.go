// Package reasoning provides the client for the external reasoning
// boundary (the Anthropic messages API). One request, one response, no
// streaming; every call is bounded by a timeout.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	coreerrors "github.com/intelcore/intelcore/internal/errors"
)

const defaultEndpoint = "https://api.anthropic.com/v1/messages"

// Client calls the Anthropic messages API.
type Client struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// New creates a Client. apiKey must be a pre-issued credential; the
// core only forwards it.
func New(apiKey, model string, maxTokens int, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, coreerrors.New(coreerrors.ErrCategorySynthesis,
			coreerrors.CodeReasoningFailed, "anthropic api key is not set")
	}

	return &Client{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		endpoint:  defaultEndpoint,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Invoke sends one system instruction and user payload and returns the
// raw response text.
func (c *Client) Invoke(ctx context.Context, system, user string) (string, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages: []apiMessage{
			{Role: "user", Content: user},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", coreerrors.NewSynthesisError(coreerrors.CodeReasoningFailed, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", coreerrors.NewSynthesisError(coreerrors.CodeReasoningFailed, "create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", coreerrors.NewSynthesisError(coreerrors.CodeReasoningFailed, "http request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", coreerrors.NewSynthesisError(coreerrors.CodeReasoningFailed, "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", coreerrors.NewSynthesisError(coreerrors.CodeReasoningFailed,
			fmt.Sprintf("api error (status %d): %s", resp.StatusCode, string(body)), nil)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", coreerrors.NewSynthesisError(coreerrors.CodeReasoningFailed, "unmarshal response", err)
	}

	if apiResp.Error != nil {
		return "", coreerrors.New(coreerrors.ErrCategorySynthesis,
			coreerrors.CodeReasoningFailed, apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", coreerrors.New(coreerrors.ErrCategorySynthesis,
			coreerrors.CodeEmptyResponse, "empty response")
	}

	return apiResp.Content[0].Text, nil
}
