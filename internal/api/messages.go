// ABOUTME: JSON handlers for the message endpoints
// ABOUTME: Maps request bodies onto board service calls and service errors onto status codes

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2389/msgboard/internal/board"
)

// MessageResponse is a single message as returned by GET /api/messages.
// The edit token is deliberately absent: it is revealed only at creation.
type MessageResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateMessageRequest is the JSON request body for POST /api/messages.
type CreateMessageRequest struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// CreateMessageResponse is the JSON response for POST /api/messages. The only
// response that ever carries an edit token.
type CreateMessageResponse struct {
	ID        int64  `json:"id"`
	EditToken string `json:"editToken"`
}

// EditMessageRequest is the JSON request body for PUT /api/messages/{id}.
// A username field in the body is ignored: it cannot change after creation.
type EditMessageRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	EditToken string `json:"editToken"`
}

// DeleteMessageRequest is the JSON request body for DELETE /api/messages/{id}.
type DeleteMessageRequest struct {
	EditToken string `json:"editToken"`
}

// okResponse acknowledges a successful mutation.
type okResponse struct {
	OK bool `json:"ok"`
}

// handleListMessages handles GET /api/messages.
// Returns every message, most recently created first.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.board.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list messages", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]MessageResponse, len(messages))
	for i, msg := range messages {
		response[i] = MessageResponse{
			ID:        msg.ID,
			Username:  msg.Username,
			Title:     msg.Title,
			Body:      msg.Body,
			CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339Nano),
			UpdatedAt: msg.UpdatedAt.UTC().Format(time.RFC3339Nano),
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleCreateMessage handles POST /api/messages.
// On success returns 201 with the assigned id and the one-time edit token.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.board.Create(r.Context(), board.CreateInput{
		Username: req.Username,
		Title:    req.Title,
		Body:     req.Body,
	})
	if err != nil {
		s.sendServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, CreateMessageResponse{
		ID:        result.ID,
		EditToken: result.EditToken,
	})
}

// handleEditMessage handles PUT /api/messages/{id}.
func (s *Server) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.messageID(w, r)
	if !ok {
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.board.Edit(r.Context(), id, board.EditInput{
		Title:     req.Title,
		Body:      req.Body,
		EditToken: req.EditToken,
	})
	if err != nil {
		s.sendServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// handleDeleteMessage handles DELETE /api/messages/{id}.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.messageID(w, r)
	if !ok {
		return
	}

	var req DeleteMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.board.Delete(r.Context(), id, req.EditToken); err != nil {
		s.sendServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// messageID parses the {id} path segment. Writes a 400 and returns false on
// malformed input.
func (s *Server) messageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		s.sendJSONError(w, http.StatusBadRequest, "invalid message id")
		return 0, false
	}
	return id, true
}

// sendServiceError maps board service errors to HTTP responses.
func (s *Server) sendServiceError(w http.ResponseWriter, err error) {
	var verr *board.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Fields})
	case errors.Is(err, board.ErrMissingToken):
		s.sendJSONError(w, http.StatusBadRequest, "editToken is required")
	case errors.Is(err, board.ErrNotAuthorized):
		s.sendJSONError(w, http.StatusForbidden, "not authorized to modify this message")
	default:
		s.logger.Error("request failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
