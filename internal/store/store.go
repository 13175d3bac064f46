// ABOUTME: Store interface and data types for msgboard persistence
// ABOUTME: Defines the Message struct and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested message does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotAuthorized is returned when an id/token pair matches no stored message.
// A wrong token and a nonexistent id produce the same error so callers cannot
// probe which ids exist.
var ErrNotAuthorized = errors.New("not authorized")

// ErrDuplicateToken is returned when an insert collides with an existing
// edit token. With UUIDv4 tokens this is effectively unreachable; the unique
// constraint is the backstop.
var ErrDuplicateToken = errors.New("edit token already exists")

// Message represents a single board message. EditToken is the only mutation
// credential and is never exposed after creation.
type Message struct {
	ID        int64
	Username  string
	Title     string
	Body      string
	EditToken string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store defines the interface for message persistence.
//
// UpdateMessage and DeleteMessage take the edit token and apply it as part of
// the statement itself, so the authorization check and the mutation are a
// single atomic unit at the storage layer.
type Store interface {
	// CreateMessage inserts a new message and fills in its assigned ID.
	CreateMessage(ctx context.Context, msg *Message) error

	// GetMessage retrieves a message by ID.
	GetMessage(ctx context.Context, id int64) (*Message, error)

	// ListMessages returns all messages ordered by creation time descending,
	// ties broken by id descending.
	ListMessages(ctx context.Context) ([]*Message, error)

	// Authorize reports whether a message with the given id exists and its
	// stored edit token equals editToken. Returns ErrNotAuthorized otherwise.
	Authorize(ctx context.Context, id int64, editToken string) error

	// UpdateMessage sets title, body and updated_at on the message matching
	// both id and editToken. Returns ErrNotAuthorized if no row matches.
	UpdateMessage(ctx context.Context, id int64, editToken, title, body string, updatedAt time.Time) error

	// DeleteMessage permanently removes the message matching both id and
	// editToken. Returns ErrNotAuthorized if no row matches.
	DeleteMessage(ctx context.Context, id int64, editToken string) error

	// Close releases any resources held by the store.
	Close() error
}
