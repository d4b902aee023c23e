package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	coreerrors "github.com/intelcore/intelcore/internal/errors"
	"github.com/intelcore/intelcore/pkg/types"
)

// SourceWhatsApp is the source tag on events produced by this collector.
const SourceWhatsApp = "whatsapp"

// bridgeMessage is one record returned by the bridge's recent-messages
// endpoint.
type bridgeMessage struct {
	ID            string `json:"id"`
	ChatJID       string `json:"chat_jid"`
	ChatName      string `json:"chat_name"`
	Sender        string `json:"sender"`
	Content       string `json:"content"`
	Timestamp     string `json:"timestamp"`
	IsFromMe      bool   `json:"is_from_me"`
	MediaType     string `json:"media_type,omitempty"`
	Transcription string `json:"transcription,omitempty"`
}

// WhatsAppCollector fetches messages from the WhatsApp bridge REST API.
type WhatsAppCollector struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewWhatsAppCollector creates a collector against the bridge at baseURL.
func NewWhatsAppCollector(baseURL, apiKey string, timeout time.Duration) *WhatsAppCollector {
	return &WhatsAppCollector{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.With("component", "collect.whatsapp"),
	}
}

// Name returns the source tag.
func (w *WhatsAppCollector) Name() string {
	return SourceWhatsApp
}

// Collect fetches messages newer than since from the bridge and converts
// them to normalized events. Messages with no usable content are dropped.
func (w *WhatsAppCollector) Collect(ctx context.Context, since time.Time) ([]types.Event, error) {
	hours := int(time.Since(since).Hours()) + 1
	if hours < 1 {
		hours = 1
	}

	endpoint := fmt.Sprintf("%s/api/messages/recent?%s", w.baseURL,
		url.Values{"hours": []string{strconv.Itoa(hours)}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, coreerrors.NewCollectionError(coreerrors.CodeSweepFailed, "create bridge request", err)
	}
	if w.apiKey != "" {
		req.Header.Set("X-API-Key", w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, coreerrors.NewCollectionError(coreerrors.CodeBridgeTimeout, "fetch recent messages", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, coreerrors.NewCollectionError(coreerrors.CodeSweepFailed,
			fmt.Sprintf("bridge returned status %d", resp.StatusCode), nil)
	}

	var messages []bridgeMessage
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, coreerrors.NewCollectionError(coreerrors.CodeSweepFailed, "decode bridge response", err)
	}

	events := make([]types.Event, 0, len(messages))
	for _, msg := range messages {
		event, ok := w.toEvent(msg)
		if !ok {
			continue
		}
		events = append(events, event)
	}

	w.logger.Info("collected messages from bridge",
		"count", len(events), "since", since.Format(time.RFC3339))
	return events, nil
}

// toEvent converts one bridge message into an Event. Transcriptions take
// precedence over raw content; media without either becomes a tag like
// "[audio]"; fully empty messages are dropped.
func (w *WhatsAppCollector) toEvent(msg bridgeMessage) (types.Event, bool) {
	content := msg.Transcription
	if content == "" {
		content = msg.Content
	}
	if content == "" && msg.MediaType != "" {
		content = "[" + msg.MediaType + "]"
	}
	if content == "" {
		return types.Event{}, false
	}

	ts, err := time.Parse(time.RFC3339, msg.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	sender := msg.Sender
	if msg.IsFromMe {
		sender = "Me"
	} else if sender == "" {
		sender = "Unknown"
	}

	channel := msg.ChatName
	if channel == "" {
		channel = msg.ChatJID
	}

	event := types.NewEvent(SourceWhatsApp, msg.ChatJID+":"+msg.ID, "message", ts)
	event.SenderName = sender
	event.SenderID = msg.Sender
	event.ChannelName = channel
	event.ChannelID = msg.ChatJID
	event.Content = content
	event.Metadata = map[string]interface{}{
		"is_from_me":        msg.IsFromMe,
		"media_type":        msg.MediaType,
		"has_transcription": msg.Transcription != "",
	}
	return event, true
}
