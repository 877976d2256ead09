// Package history records fired notifications in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/Veraticus/chat-notify/pkg/logging"
	"github.com/Veraticus/chat-notify/pkg/types"
)

// Entry is one fired notification.
type Entry struct {
	ID                string
	Time              time.Time
	NotificationIndex int
	NotificationName  string
	Text              string
	TranslationKey    string
	Responses         int
}

// Store wraps the history database.
type Store struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging history: %w", err)
	}
	return newStore(db, path)
}

// OpenMemory creates an in-memory store for tests and one-shot commands.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory history: %w", err)
	}
	// Every connection would get its own empty database.
	db.SetMaxOpenConns(1)
	return newStore(db, ":memory:")
}

func newStore(db *sql.DB, path string) (*Store, error) {
	s := &Store{db: db, path: path, logger: logging.GetLogger("history")}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// timeLayout has fixed width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS fired (
    id TEXT PRIMARY KEY,
    fired_at TEXT NOT NULL,
    notification_index INTEGER NOT NULL,
    notification_name TEXT NOT NULL DEFAULT '',
    text TEXT NOT NULL DEFAULT '',
    translation_key TEXT NOT NULL DEFAULT '',
    responses INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_fired_at ON fired(fired_at);
`

// Record inserts e, assigning an ID and time when missing.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fired (id, fired_at, notification_index, notification_name, text, translation_key, responses)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UTC().Format(timeLayout), e.NotificationIndex, e.NotificationName,
		e.Text, e.TranslationKey, e.Responses,
	)
	if err != nil {
		return fmt.Errorf("recording history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fired_at, notification_index, notification_name, text, translation_key, responses
		 FROM fired ORDER BY fired_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var firedAt string
		if err := rows.Scan(&e.ID, &firedAt, &e.NotificationIndex, &e.NotificationName,
			&e.Text, &e.TranslationKey, &e.Responses); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if e.Time, err = time.Parse(timeLayout, firedAt); err != nil {
			return nil, fmt.Errorf("parsing history time %q: %w", firedAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HandleOutcome records a fired notification. Failures are logged.
func (s *Store) HandleOutcome(event types.TextEvent, outcome *types.MatchOutcome) {
	e := &Entry{
		NotificationIndex: outcome.NotificationIndex,
		NotificationName:  outcome.NotificationName,
		Text:              event.Text,
		TranslationKey:    event.TranslationKey,
		Responses:         len(outcome.Responses),
	}
	if err := s.Record(context.Background(), e); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to record history")
	}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
