// Package store provides the durable, deduplicated event log backed by SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	coreerrors "github.com/intelcore/intelcore/internal/errors"
	"github.com/intelcore/intelcore/pkg/types"
)

//go:embed schema.sql
var schema string

// Store is the durable event log plus the collection audit log.
// Every call reflects persisted state; there is no cache layer.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (or creates) the event database at dbPath and initializes
// the schema.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, coreerrors.NewStorageError(coreerrors.CodeOpenFailed, "create db directory", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, coreerrors.NewStorageError(coreerrors.CodeOpenFailed, "open database", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, coreerrors.NewStorageError(coreerrors.CodeOpenFailed, "init schema", err)
	}

	return &Store{
		db:     db,
		logger: slog.With("component", "store"),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Store inserts events with ignore-on-conflict semantics keyed by
// (source, source_id). Events already present are silently skipped and
// not counted. Returns the number of newly inserted events.
func (s *Store) Store(ctx context.Context, events []types.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR IGNORE INTO events
		(id, source, source_id, event_type, timestamp,
		 sender_name, sender_id, recipient_name,
		 channel_name, channel_id, title, content,
		 domain, importance, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, coreerrors.NewStorageError(coreerrors.CodeInsertFailed, "prepare insert", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		var meta interface{}
		if len(e.Metadata) > 0 {
			b, err := json.Marshal(e.Metadata)
			if err == nil {
				meta = string(b)
			}
		}

		importance := e.Importance
		if importance == "" {
			importance = types.ImportanceNormal
		}

		res, err := stmt.ExecContext(ctx,
			e.ID, e.Source, e.SourceID, e.EventType, e.Timestamp.UTC().UnixNano(),
			nullable(e.SenderName), nullable(e.SenderID), nullable(e.RecipientName),
			nullable(e.ChannelName), nullable(e.ChannelID), nullable(e.Title),
			nullable(e.Content), nullable(e.Domain), importance, meta,
		)
		if err != nil {
			return inserted, coreerrors.NewStorageError(coreerrors.CodeInsertFailed, "insert event", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	return inserted, nil
}

// EventsSince returns events with timestamp strictly greater than since,
// ascending by timestamp, optionally filtered by source.
func (s *Store) EventsSince(ctx context.Context, since time.Time, source string) ([]types.Event, error) {
	query := `
		SELECT id, source, source_id, event_type, timestamp,
		       sender_name, sender_id, recipient_name,
		       channel_name, channel_id, title, content,
		       domain, importance, metadata
		FROM events WHERE timestamp > ?`
	args := []interface{}{since.UTC().UnixNano()}

	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	query += " ORDER BY timestamp"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, coreerrors.NewStorageError(coreerrors.CodeQueryFailed, "query events", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, coreerrors.NewStorageError(coreerrors.CodeQueryFailed, "scan event", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, coreerrors.NewStorageError(coreerrors.CodeQueryFailed, "iterate events", err)
	}

	return events, nil
}

// LogCollection appends one audit row per sweep attempt. Failures to
// write the audit row are logged and never propagated to the caller.
func (s *Store) LogCollection(ctx context.Context, source string, count int, status, errMsg string, duration time.Duration) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_log
		(source, events_collected, status, error_message, duration_seconds)
		VALUES (?, ?, ?, ?, ?)`,
		source, count, status, nullable(errMsg), duration.Seconds(),
	)
	if err != nil {
		s.logger.Error("failed to write collection log entry",
			"source", source, "status", status, "error", err)
	}
}

// RecentCollections returns the most recent audit rows, newest first.
func (s *Store) RecentCollections(ctx context.Context, limit int) ([]types.CollectionLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, collected_at, events_collected, status,
		       error_message, duration_seconds
		FROM collection_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, coreerrors.NewStorageError(coreerrors.CodeQueryFailed, "query collection log", err)
	}
	defer rows.Close()

	var entries []types.CollectionLogEntry
	for rows.Next() {
		var entry types.CollectionLogEntry
		var errMsg sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Source, &entry.CollectedAt,
			&entry.EventsCollected, &entry.Status, &errMsg, &entry.DurationSeconds); err != nil {
			return nil, coreerrors.NewStorageError(coreerrors.CodeQueryFailed, "scan collection log", err)
		}
		entry.ErrorMessage = errMsg.String
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEvent(rows *sql.Rows) (types.Event, error) {
	var e types.Event
	var ts int64
	var senderName, senderID, recipientName, channelName, channelID sql.NullString
	var title, content, domain, metadata sql.NullString

	err := rows.Scan(&e.ID, &e.Source, &e.SourceID, &e.EventType, &ts,
		&senderName, &senderID, &recipientName,
		&channelName, &channelID, &title, &content,
		&domain, &e.Importance, &metadata)
	if err != nil {
		return e, err
	}

	e.Timestamp = time.Unix(0, ts).UTC()
	e.SenderName = senderName.String
	e.SenderID = senderID.String
	e.RecipientName = recipientName.String
	e.ChannelName = channelName.String
	e.ChannelID = channelID.String
	e.Title = title.String
	e.Content = content.String
	e.Domain = domain.String

	if metadata.Valid && metadata.String != "" {
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(metadata.String), &meta); err == nil {
			e.Metadata = meta
		}
	}

	return e, nil
}

// nullable maps empty strings to NULL so that optional columns stay NULL
// instead of collecting empty strings.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
