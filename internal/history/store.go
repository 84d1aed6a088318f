// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists chat sessions, their turns, and the references
// collected in them to a SQLite journal with full-text search over turns.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrNotFound is returned when a session ID is not in the journal.
var ErrNotFound = errors.New("session not found")

const defaultMaxResults = 20

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int

	// fts is false when the sqlite3 build lacks FTS5; Search then falls
	// back to LIKE matching.
	fts bool
}

// Open opens or creates the journal at cfg.DBPath and creates the schema
// if it does not exist.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("history database path is empty")
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FullText reports whether searches use the FTS5 index.
func (s *Store) FullText() bool {
	return s.fts
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			style TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			UNIQUE(session_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id)`,
		`CREATE TABLE IF NOT EXISTS session_references (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			year TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			venue TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			source_name TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (session_id, seq)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='turns_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	// FTS5 is compiled in only with the sqlite_fts5 build tag.
	if _, err := s.db.Exec(`CREATE VIRTUAL TABLE turns_fts USING fts5(content, content=turns, content_rowid=rowid)`); err != nil {
		return nil
	}
	triggers := []string{
		`CREATE TRIGGER turns_ai AFTER INSERT ON turns BEGIN
			INSERT INTO turns_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
		`CREATE TRIGGER turns_ad AFTER DELETE ON turns BEGIN
			INSERT INTO turns_fts(turns_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		END`,
		`CREATE TRIGGER turns_au AFTER UPDATE ON turns BEGIN
			INSERT INTO turns_fts(turns_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			INSERT INTO turns_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
	}
	for _, stmt := range triggers {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	s.fts = true
	return nil
}

// SaveSession writes the session's metadata, turns, and references,
// replacing whatever the journal held for that ID.
func (s *Store) SaveSession(ctx context.Context, sess *types.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session has no ID")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSession(ctx, tx, sess); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("deleting old turns: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM session_references WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("deleting old references: %w", err)
	}
	for i, t := range sess.Turns {
		if err := insertTurn(ctx, tx, sess.ID, i+1, t); err != nil {
			return err
		}
	}
	if err := insertReferences(ctx, tx, sess.ID, 1, sess.References); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendTurn adds one turn to the end of a session's log. A session row is
// created on first use.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, t types.Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := touchSession(ctx, tx, sessionID); err != nil {
		return err
	}
	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?`, sessionID,
	).Scan(&next); err != nil {
		return fmt.Errorf("reading turn sequence: %w", err)
	}
	if err := insertTurn(ctx, tx, sessionID, next, t); err != nil {
		return err
	}
	return tx.Commit()
}

// AddReferences appends references to a session in order.
func (s *Store) AddReferences(ctx context.Context, sessionID string, refs []types.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := touchSession(ctx, tx, sessionID); err != nil {
		return err
	}
	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM session_references WHERE session_id = ?`, sessionID,
	).Scan(&next); err != nil {
		return fmt.Errorf("reading reference sequence: %w", err)
	}
	if err := insertReferences(ctx, tx, sessionID, next, refs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a session with its turns and references.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", sessionID, ErrNotFound)
	}
	return nil
}

func upsertSession(ctx context.Context, tx *sql.Tx, sess *types.Session) error {
	created := sess.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at, context, style, language)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			updated_at=excluded.updated_at, context=excluded.context,
			style=excluded.style, language=excluded.language`,
		sess.ID, formatTime(created), formatTime(time.Now().UTC()),
		sess.Context, sess.Style, string(sess.Language),
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

func touchSession(ctx context.Context, tx *sql.Tx, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session has no ID")
	}
	now := formatTime(time.Now().UTC())
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at=excluded.updated_at`,
		sessionID, now, now,
	)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

func insertTurn(ctx context.Context, tx *sql.Tx, sessionID string, seq int, t types.Turn) error {
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO turns (session_id, seq, role, content, category, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, seq, string(t.Role), t.Content, string(t.Category), string(t.Source), formatTime(created),
	)
	if err != nil {
		return fmt.Errorf("inserting turn %d: %w", seq, err)
	}
	return nil
}

func insertReferences(ctx context.Context, tx *sql.Tx, sessionID string, start int, refs []types.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_references (session_id, seq, author, year, title, venue, url, source_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range refs {
		if _, err := stmt.ExecContext(ctx,
			sessionID, start+i, r.Author, r.Year, r.Title, r.Venue, r.URL, r.SourceName,
		); err != nil {
			return fmt.Errorf("inserting reference %q: %w", r.Title, err)
		}
	}
	return nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
