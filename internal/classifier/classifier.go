// Package classifier maps events to life-domain labels using an ordered
// rule table. Classification is deterministic and total: the first domain
// with any matching rule wins, and events no rule matches fall back to
// the personal domain.
package classifier

import (
	"strings"

	"github.com/intelcore/intelcore/pkg/types"
)

// contentBlobLen caps how much event content feeds the match blob.
const contentBlobLen = 200

// Classifier classifies events against a fixed, ordered rule table.
type Classifier struct {
	rules []types.DomainRule
}

// New creates a Classifier with the given ordered rule table.
// The table is never mutated by classification.
func New(rules []types.DomainRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the domain label for an event. For each domain in
// table order it checks, in priority: known-person substrings in the
// blob, sender-identifier substrings against email domains, channel-name
// substrings, and keyword substrings in the blob. The first domain with
// any match short-circuits.
func (c *Classifier) Classify(event types.Event) string {
	blob := buildBlob(event)
	senderID := strings.ToLower(event.SenderID)
	channel := strings.ToLower(event.ChannelName)

	for _, rule := range c.rules {
		for _, person := range rule.People {
			if strings.Contains(blob, person) {
				return rule.Name
			}
		}
		for _, emailDomain := range rule.EmailDomains {
			if senderID != "" && strings.Contains(senderID, emailDomain) {
				return rule.Name
			}
		}
		for _, ch := range rule.Channels {
			if channel != "" && strings.Contains(channel, ch) {
				return rule.Name
			}
		}
		for _, keyword := range rule.Keywords {
			if strings.Contains(blob, keyword) {
				return rule.Name
			}
		}
	}

	return types.DomainPersonal
}

// buildBlob joins sender name, channel name, title and the head of the
// content into one lowercase text blob.
func buildBlob(event types.Event) string {
	content := event.Content
	// The cap is in characters, not bytes; a byte slice could cut a
	// rune in half and shrink the window for non-ASCII text.
	if runes := []rune(content); len(runes) > contentBlobLen {
		content = string(runes[:contentBlobLen])
	}

	var parts []string
	for _, p := range []string{event.SenderName, event.ChannelName, event.Title, content} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.ToLower(strings.Join(parts, " "))
}
