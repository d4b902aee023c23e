// Package delivery pushes briefings to the recipient through the
// WhatsApp bridge. Briefings exceeding the per-message cap are split at
// line boundaries and sent as ordered parts; each part's failure is
// independent, and failed parts are not retried or requeued.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	coreerrors "github.com/intelcore/intelcore/internal/errors"
)

// Sender delivers briefing text via the bridge REST API.
type Sender struct {
	baseURL   string
	apiKey    string
	recipient string
	maxLen    int
	dryRun    bool
	client    *http.Client
	logger    *slog.Logger
}

// NewSender creates a Sender. With dryRun set, briefings are logged
// instead of delivered.
func NewSender(baseURL, apiKey, recipient string, maxLen int, dryRun bool, timeout time.Duration) *Sender {
	return &Sender{
		baseURL:   baseURL,
		apiKey:    apiKey,
		recipient: recipient,
		maxLen:    maxLen,
		dryRun:    dryRun,
		client:    &http.Client{Timeout: timeout},
		logger:    slog.With("component", "delivery"),
	}
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Deliver splits text into parts and sends them in order. A failed part
// is logged and does not prevent later parts from being sent. Returns
// an error if any part failed.
func (s *Sender) Deliver(ctx context.Context, text string) error {
	parts := SplitMessage(text, s.maxLen)
	if len(parts) == 0 {
		return nil
	}

	if s.dryRun {
		s.logger.Info("dry run, briefing not delivered", "parts", len(parts))
		for i, part := range parts {
			fmt.Printf("--- part %d/%d ---\n%s\n", i+1, len(parts), part)
		}
		return nil
	}

	failed := 0
	for i, part := range parts {
		if err := s.send(ctx, part); err != nil {
			failed++
			s.logger.Error("failed to send briefing part",
				"part", i+1, "total", len(parts), "error", err)
			continue
		}
		s.logger.Info("sent briefing part", "part", i+1, "total", len(parts))
	}

	if failed > 0 {
		return coreerrors.New(coreerrors.ErrCategoryDelivery, coreerrors.CodeSendFailed,
			fmt.Sprintf("%d of %d parts failed", failed, len(parts)))
	}
	return nil
}

func (s *Sender) send(ctx context.Context, message string) error {
	body, err := json.Marshal(sendRequest{Recipient: s.recipient, Message: message})
	if err != nil {
		return coreerrors.NewDeliveryError(coreerrors.CodeSendFailed, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/send", bytes.NewReader(body))
	if err != nil {
		return coreerrors.NewDeliveryError(coreerrors.CodeSendFailed, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return coreerrors.NewDeliveryError(coreerrors.CodeSendFailed, "http request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return coreerrors.New(coreerrors.ErrCategoryDelivery, coreerrors.CodeBridgeRejected,
			fmt.Sprintf("bridge returned status %d", resp.StatusCode))
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return coreerrors.NewDeliveryError(coreerrors.CodeSendFailed, "decode response", err)
	}
	if !result.Success {
		return coreerrors.New(coreerrors.ErrCategoryDelivery, coreerrors.CodeBridgeRejected,
			"bridge reported failure: "+result.Message)
	}

	return nil
}
