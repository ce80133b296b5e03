package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Fresh database, user_version not yet stamped
// 1 - schema.sql as embedded
//
// Later versions add a migrateToVN step to runMigrations.
const currentSchemaVersion = 1

// ErrEmptyText is returned by Append for blank input.
var ErrEmptyText = errors.New("history: empty text")

// Entry is one submitted line of chat input.
type Entry struct {
	ID        string    `json:"id"`
	Session   string    `json:"session"`
	Text      string    `json:"text"`
	Hash      string    `json:"hash"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

// Store provides durable storage for chat input history.
type Store struct {
	db  *sql.DB
	ids IDGenerator
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the entry ID source.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open creates or opens a SQLite database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, ids: UUIDv7Generator{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations brings user_version up to currentSchemaVersion. Version 1
// has no steps beyond schema.sql. A database written by a newer build is
// refused.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("history schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if version == currentSchemaVersion {
		return nil
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Append records text for session. When the most recent entry of the
// session has the same hash, nothing is written and that entry is returned
// with false.
func (s *Store) Append(ctx context.Context, session, text string) (Entry, bool, error) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, false, ErrEmptyText
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, false, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	hash := TextHash(text)

	last, err := scanEntry(tx.QueryRowContext(ctx, `
		SELECT id, session, text, hash, seq, created_at
		FROM entries
		WHERE session = ?
		ORDER BY seq DESC
		LIMIT 1
	`, session))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Entry{}, false, fmt.Errorf("read last entry: %w", err)
	case last.Hash == hash:
		return last, false, nil
	}

	entry := Entry{
		ID:        s.ids.Generate(),
		Session:   session,
		Text:      text,
		Hash:      hash,
		Seq:       last.Seq + 1,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (id, session, text, hash, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Session, entry.Text, entry.Hash, entry.Seq, entry.CreatedAt.UnixMilli())
	if err != nil {
		return Entry{}, false, fmt.Errorf("insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, false, fmt.Errorf("commit append: %w", err)
	}
	return entry, true, nil
}

// List returns up to limit entries of session, newest first. A limit of
// zero or less returns every entry.
func (s *Store) List(ctx context.Context, session string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, text, hash, seq, created_at
		FROM entries
		WHERE session = ?
		ORDER BY seq DESC
		LIMIT ?
	`, session, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry of session and returns how many were removed.
func (s *Store) Clear(ctx context.Context, session string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE session = ?`, session)
	if err != nil {
		return 0, fmt.Errorf("clear session %q: %w", session, err)
	}
	return res.RowsAffected()
}

// Sessions returns the distinct session names, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session FROM entries ORDER BY session`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, name)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e       Entry
		created int64
	)
	if err := row.Scan(&e.ID, &e.Session, &e.Text, &e.Hash, &e.Seq, &created); err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.UnixMilli(created).UTC()
	return e, nil
}
