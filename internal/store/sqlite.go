// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides message persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			edit_token TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_messages_created_at
			ON messages(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// CreateMessage inserts a new message and fills in the auto-assigned ID.
// AUTOINCREMENT guarantees ids are monotonic and never reused, even after
// deletion. Returns ErrDuplicateToken if the edit token already exists.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (username, title, body, edit_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		msg.Username,
		msg.Title,
		msg.Body,
		msg.EditToken,
		msg.CreatedAt.UTC().Format(time.RFC3339Nano),
		msg.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateToken
		}
		return fmt.Errorf("inserting message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting inserted id: %w", err)
	}
	msg.ID = id

	s.logger.Debug("created message", "id", msg.ID, "username", msg.Username)
	return nil
}

// GetMessage retrieves a message by ID.
// Returns ErrNotFound if the message doesn't exist.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*Message, error) {
	query := `
		SELECT id, username, title, body, edit_token, created_at, updated_at
		FROM messages
		WHERE id = ?
	`

	var msg Message
	var createdAtStr, updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.Username,
		&msg.Title,
		&msg.Body,
		&msg.EditToken,
		&createdAtStr,
		&updatedAtStr,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying message: %w", err)
	}

	msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	msg.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &msg, nil
}

// ListMessages returns all messages, most recently created first.
// Ties on creation time are broken by id descending.
func (s *SQLiteStore) ListMessages(ctx context.Context) ([]*Message, error) {
	query := `
		SELECT id, username, title, body, edit_token, created_at, updated_at
		FROM messages
		ORDER BY datetime(created_at) DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		var createdAtStr, updatedAtStr string

		if err := rows.Scan(
			&msg.ID,
			&msg.Username,
			&msg.Title,
			&msg.Body,
			&msg.EditToken,
			&createdAtStr,
			&updatedAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}

		msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		msg.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message rows: %w", err)
	}

	return messages, nil
}

// Authorize checks that a message with the given id exists and carries the
// given edit token. Returns ErrNotAuthorized in both the wrong-token and the
// no-such-id case.
func (s *SQLiteStore) Authorize(ctx context.Context, id int64, editToken string) error {
	query := `SELECT 1 FROM messages WHERE id = ? AND edit_token = ?`

	var one int
	err := s.db.QueryRowContext(ctx, query, id, editToken).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotAuthorized
	}
	if err != nil {
		return fmt.Errorf("checking authorization: %w", err)
	}
	return nil
}

// UpdateMessage sets title, body and updated_at on the message matching both
// id and edit token. The token match is part of the UPDATE itself, so a
// concurrent delete cannot slip between check and mutation.
// Returns ErrNotAuthorized if no row matches.
func (s *SQLiteStore) UpdateMessage(ctx context.Context, id int64, editToken, title, body string, updatedAt time.Time) error {
	query := `
		UPDATE messages
		SET title = ?, body = ?, updated_at = ?
		WHERE id = ? AND edit_token = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		title,
		body,
		updatedAt.UTC().Format(time.RFC3339Nano),
		id,
		editToken,
	)
	if err != nil {
		return fmt.Errorf("updating message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotAuthorized
	}

	s.logger.Debug("updated message", "id", id)
	return nil
}

// DeleteMessage permanently removes the message matching both id and edit
// token. Returns ErrNotAuthorized if no row matches; deleting an already
// deleted message is indistinguishable from presenting a wrong token.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id int64, editToken string) error {
	query := `DELETE FROM messages WHERE id = ? AND edit_token = ?`

	result, err := s.db.ExecContext(ctx, query, id, editToken)
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotAuthorized
	}

	s.logger.Debug("deleted message", "id", id)
	return nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
