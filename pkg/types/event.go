// Package types provides core data types shared across the intelligence core.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Importance levels for events.
const (
	ImportanceNormal = "normal"
	ImportanceHigh   = "high"
)

// DomainPersonal is the fallback domain for events no rule matches.
const DomainPersonal = "personal"

// Collection sweep outcomes recorded in the audit log.
const (
	CollectionSuccess = "success"
	CollectionFailed  = "failed"
)

// Event is one normalized communication record from any source.
// The pair (Source, SourceID) is unique: re-ingesting the same pair
// is a silent no-op in the store.
type Event struct {
	// ID is the system-generated unique identifier.
	ID string `json:"id"`

	// Source tags the origin system (e.g., "whatsapp", "gmail", "slack").
	Source string `json:"source"`

	// SourceID is the origin-native identifier; may be empty.
	SourceID string `json:"source_id"`

	// EventType categorizes the event (e.g., "message", "email").
	EventType string `json:"event_type"`

	// Timestamp is when the event occurred (timezone-aware).
	Timestamp time.Time `json:"timestamp"`

	SenderName    string `json:"sender_name,omitempty"`
	SenderID      string `json:"sender_id,omitempty"`
	RecipientName string `json:"recipient_name,omitempty"`
	ChannelName   string `json:"channel_name,omitempty"`
	ChannelID     string `json:"channel_id,omitempty"`

	// Title is set for titled records (emails, meeting notes).
	Title string `json:"title,omitempty"`

	// Content is the message body or transcription.
	Content string `json:"content,omitempty"`

	// Domain is the life-domain label; empty until classified, then
	// set exactly once.
	Domain string `json:"domain,omitempty"`

	// Importance defaults to "normal".
	Importance string `json:"importance"`

	// Metadata is a free-form string-keyed bag.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent creates an Event with a generated ID and default importance.
func NewEvent(source, sourceID, eventType string, ts time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Source:     source,
		SourceID:   sourceID,
		EventType:  eventType,
		Timestamp:  ts,
		Importance: ImportanceNormal,
	}
}

// CollectionLogEntry is one audit row for a collection sweep attempt.
// Exactly one row is appended per sweep regardless of outcome.
type CollectionLogEntry struct {
	ID              int64     `json:"id"`
	Source          string    `json:"source"`
	CollectedAt     time.Time `json:"collected_at"`
	EventsCollected int       `json:"events_collected"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
}
