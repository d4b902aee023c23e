package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage_ShortTextSinglePart(t *testing.T) {
	parts := SplitMessage("hello\nworld", 100)
	assert.Equal(t, []string{"hello\nworld"}, parts)
}

func TestSplitMessage_Empty(t *testing.T) {
	assert.Nil(t, SplitMessage("   \n  ", 100))
}

func TestSplitMessage_SplitsAtLineBoundaries(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("line number %02d with some padding text", i))
	}
	text := strings.Join(lines, "\n")

	parts := SplitMessage(text, 120)
	require.Greater(t, len(parts), 1)

	for _, part := range parts {
		assert.LessOrEqual(t, len(part), 120)
		// Every line inside a part must be one of the original lines.
		for _, line := range strings.Split(part, "\n") {
			assert.Contains(t, lines, line)
		}
	}

	// Reassembly preserves all lines in order.
	joined := strings.Join(parts, "\n")
	for i, line := range lines {
		assert.Contains(t, joined, line, "line %d missing", i)
	}
	assert.Less(t, strings.Index(joined, lines[0]), strings.Index(joined, lines[19]))
}

func TestSplitMessage_OverlongLineIsHardWrapped(t *testing.T) {
	text := strings.Repeat("a", 250)
	parts := SplitMessage(text, 100)

	require.Len(t, parts, 3)
	for _, part := range parts {
		assert.LessOrEqual(t, len(part), 100)
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

type recordingBridge struct {
	srv      *httptest.Server
	messages []string
	failOn   map[int]bool
	calls    int
}

func newRecordingBridge(t *testing.T) *recordingBridge {
	t.Helper()
	b := &recordingBridge{failOn: map[int]bool{}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/send", r.URL.Path)
		b.calls++

		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if b.failOn[b.calls] {
			json.NewEncoder(w).Encode(sendResponse{Success: false, Message: "not connected"})
			return
		}
		b.messages = append(b.messages, req.Message)
		json.NewEncoder(w).Encode(sendResponse{Success: true})
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func TestSender_DeliverSinglePart(t *testing.T) {
	bridge := newRecordingBridge(t)
	s := NewSender(bridge.srv.URL, "", "27720000000", 4000, false, 5*time.Second)

	require.NoError(t, s.Deliver(context.Background(), "Morning! Here's your briefing."))
	require.Len(t, bridge.messages, 1)
	assert.Equal(t, "Morning! Here's your briefing.", bridge.messages[0])
}

func TestSender_DeliverMultipleParts(t *testing.T) {
	bridge := newRecordingBridge(t)
	s := NewSender(bridge.srv.URL, "", "27720000000", 60, false, 5*time.Second)

	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, fmt.Sprintf("briefing line %d with padding", i))
	}
	require.NoError(t, s.Deliver(context.Background(), strings.Join(lines, "\n")))

	require.Greater(t, len(bridge.messages), 1)
	// Parts arrive in order.
	assert.Contains(t, bridge.messages[0], "briefing line 0")
	last := bridge.messages[len(bridge.messages)-1]
	assert.Contains(t, last, "briefing line 7")
}

func TestSender_PartFailureIsIndependent(t *testing.T) {
	bridge := newRecordingBridge(t)
	bridge.failOn[1] = true
	s := NewSender(bridge.srv.URL, "", "27720000000", 60, false, 5*time.Second)

	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, fmt.Sprintf("briefing line %d with padding", i))
	}
	err := s.Deliver(context.Background(), strings.Join(lines, "\n"))

	// The first part failed but later parts were still attempted.
	assert.Error(t, err)
	assert.NotEmpty(t, bridge.messages)
	assert.Greater(t, bridge.calls, 1)
}

func TestSender_DryRunSendsNothing(t *testing.T) {
	bridge := newRecordingBridge(t)
	s := NewSender(bridge.srv.URL, "", "27720000000", 4000, true, 5*time.Second)

	require.NoError(t, s.Deliver(context.Background(), "would be sent"))
	assert.Zero(t, bridge.calls)
}
