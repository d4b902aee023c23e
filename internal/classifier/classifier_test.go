package classifier

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/intelcore/intelcore/internal/config"
	"github.com/intelcore/intelcore/pkg/types"
)

func newTestClassifier() *Classifier {
	return New(config.DefaultDomains())
}

func makeEvent(sender, channel, content string) types.Event {
	e := types.NewEvent("whatsapp", "id", "message", time.Now())
	e.SenderName = sender
	e.ChannelName = channel
	e.Content = content
	return e
}

func TestClassify(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name  string
		event types.Event
		want  string
	}{
		{
			name:  "person match",
			event: makeEvent("Patrick", "Random Chat", "hello there"),
			want:  "bi_branch",
		},
		{
			name:  "keyword match",
			event: makeEvent("Unknown", "Some Group", "the yebo deployment is ready"),
			want:  "platform45",
		},
		{
			name:  "channel match",
			event: makeEvent("Unknown", "ReadyGolf Standup", "morning all"),
			want:  "platform45",
		},
		{
			name:  "title match",
			event: func() types.Event { e := makeEvent("Unknown", "", ""); e.Title = "DayOne roadmap"; return e }(),
			want:  "bi_branch",
		},
		{
			name:  "no match falls back to personal",
			event: makeEvent("Mum", "Family", "dinner on sunday?"),
			want:  types.DomainPersonal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.event))
		})
	}
}

func TestClassify_EmailDomain(t *testing.T) {
	c := newTestClassifier()

	e := makeEvent("Somebody", "", "no keywords here")
	e.SenderID = "somebody@platform45.com"
	assert.Equal(t, "platform45", c.Classify(e))
}

func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier()
	e := makeEvent("Maro", "Yebo", "carma release")

	first := c.Classify(e)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(e))
	}
}

func TestClassify_TableOrderWins(t *testing.T) {
	c := newTestClassifier()

	// Person match in the first domain beats a keyword-only match in the
	// second, even when both apply to the same event.
	e := makeEvent("Patrick", "", "discussing the yebo launch")
	assert.Equal(t, "bi_branch", c.Classify(e))
}

func TestClassify_ContentCap(t *testing.T) {
	c := newTestClassifier()

	// A keyword appearing past the 200-char cap must not match.
	e := makeEvent("Unknown", "", strings.Repeat("x", 250)+" yebo")
	assert.Equal(t, types.DomainPersonal, c.Classify(e))
}

func TestClassify_ContentCapCountsRunes(t *testing.T) {
	c := newTestClassifier()

	// 150 two-byte runes put the keyword past 200 bytes but well inside
	// 200 characters; the cap counts characters.
	e := makeEvent("Unknown", "", strings.Repeat("é", 150)+" yebo")
	assert.Equal(t, "platform45", c.Classify(e))
}
