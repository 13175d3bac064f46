// ABOUTME: Core message service: token issuance, authorization and CRUD
// ABOUTME: Stateless between calls; all durable state lives in the store

package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/msgboard/internal/store"
)

// ErrMissingToken is returned when a mutation request carries no edit token.
// The request is rejected before any store lookup.
var ErrMissingToken = errors.New("missing edit token")

// ErrNotAuthorized is returned when the id/token pair matches no message.
// Aliases the store sentinel so transport code can match either.
var ErrNotAuthorized = store.ErrNotAuthorized

// Service owns the message lifecycle. It is safe for concurrent use: it holds
// no mutable state of its own, and the store serializes conflicting mutations.
type Service struct {
	store  store.Store
	logger *slog.Logger

	// Injectable for tests.
	now      func() time.Time
	newToken func() string
}

// New creates a message service backed by the given store.
func New(st store.Store) *Service {
	return &Service{
		store:    st,
		logger:   slog.Default().With("component", "board"),
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// CreateInput is the raw, untrusted input for Create.
type CreateInput struct {
	Username string
	Title    string
	Body     string
}

// CreateResult carries the assigned id and the edit token. This is the only
// place the token is ever revealed.
type CreateResult struct {
	ID        int64
	EditToken string
}

// Create validates the input, issues an edit token and persists the message.
// createdAt and updatedAt are stamped equal. On validation failure nothing is
// persisted and the returned error is a *ValidationError.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	vals, verr := ValidateFields(in.Username, in.Title, in.Body)
	if verr != nil {
		return nil, verr
	}

	now := s.now().UTC()
	msg := &store.Message{
		Username:  vals.Username,
		Title:     vals.Title,
		Body:      vals.Body,
		EditToken: s.newToken(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	s.logger.Info("message created", "id", msg.ID, "username", msg.Username)
	return &CreateResult{ID: msg.ID, EditToken: msg.EditToken}, nil
}

// List returns all messages, most recently created first.
func (s *Service) List(ctx context.Context) ([]*store.Message, error) {
	messages, err := s.store.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}

// EditInput is the raw, untrusted input for Edit. Username is deliberately
// absent: it cannot change after creation.
type EditInput struct {
	Title     string
	Body      string
	EditToken string
}

// Edit authorizes first, then validates, then mutates. A failed authorization
// short-circuits before validation runs. The final update is re-scoped by the
// token so a concurrent delete cannot race the mutation; updatedAt advances on
// success, createdAt and username never change.
func (s *Service) Edit(ctx context.Context, id int64, in EditInput) error {
	token := strings.TrimSpace(in.EditToken)
	if token == "" {
		return ErrMissingToken
	}

	if err := s.store.Authorize(ctx, id, token); err != nil {
		return err
	}

	vals, verr := ValidateEditFields(in.Title, in.Body)
	if verr != nil {
		return verr
	}

	if err := s.store.UpdateMessage(ctx, id, token, vals.Title, vals.Body, s.now().UTC()); err != nil {
		return err
	}

	s.logger.Info("message edited", "id", id)
	return nil
}

// Delete permanently removes the message. The token match is part of the
// delete statement itself; an already deleted id yields the same
// authorization failure as a wrong token.
func (s *Service) Delete(ctx context.Context, id int64, editToken string) error {
	token := strings.TrimSpace(editToken)
	if token == "" {
		return ErrMissingToken
	}

	if err := s.store.DeleteMessage(ctx, id, token); err != nil {
		return err
	}

	s.logger.Info("message deleted", "id", id)
	return nil
}
