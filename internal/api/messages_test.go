package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/msgboard/internal/board"
	"github.com/2389/msgboard/internal/store"
)

// setupServer creates an API server over a temporary SQLite store.
func setupServer(t *testing.T) *Server {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return New(board.New(st), ":0")
}

// doJSON performs a request with a JSON body against the server's handler.
func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON response into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// createMessage posts a valid message and returns its id and edit token.
func createMessage(t *testing.T, s *Server, username, title, body string) CreateMessageResponse {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/messages", map[string]string{
		"username": username,
		"title":    title,
		"body":     body,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var res CreateMessageResponse
	decode(t, rec, &res)
	return res
}

func listMessages(t *testing.T, s *Server) []MessageResponse {
	t.Helper()
	rec := doJSON(t, s, http.MethodGet, "/api/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []MessageResponse
	decode(t, rec, &messages)
	return messages
}

func TestAPI_CreateAndList(t *testing.T) {
	s := setupServer(t)

	res := createMessage(t, s, "ana", "Hola", "Primer mensaje")
	assert.Equal(t, int64(1), res.ID)
	_, err := uuid.Parse(res.EditToken)
	assert.NoError(t, err, "edit token is a UUID")

	messages := listMessages(t, s)
	require.Len(t, messages, 1)
	msg := messages[0]
	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "ana", msg.Username)
	assert.Equal(t, "Hola", msg.Title)
	assert.Equal(t, "Primer mensaje", msg.Body)
	assert.Equal(t, msg.CreatedAt, msg.UpdatedAt)
}

func TestAPI_Create_TokenNeverReExposed(t *testing.T) {
	s := setupServer(t)

	res := createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodGet, "/api/messages", nil)
	assert.NotContains(t, rec.Body.String(), res.EditToken)
}

func TestAPI_Create_ValidationError(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/messages", map[string]string{
		"username": "ana",
		"title":    strings.Repeat("t", 61),
		"body":     "Cuerpo",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &res)
	assert.Contains(t, res.Errors, "title")

	// Nothing persisted
	assert.Empty(t, listMessages(t, s))
}

func TestAPI_Create_MultipleViolations(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/messages", map[string]string{
		"username": "x",
		"title":    "",
		"body":     "",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &res)
	assert.Len(t, res.Errors, 3)
}

func TestAPI_Create_InvalidJSON(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestAPI_List_Empty(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAPI_List_NewestFirst(t *testing.T) {
	s := setupServer(t)

	first := createMessage(t, s, "ana", "Primero", "Cuerpo uno")
	second := createMessage(t, s, "bea", "Segundo", "Cuerpo dos")

	messages := listMessages(t, s)
	require.Len(t, messages, 2)
	assert.Equal(t, second.ID, messages[0].ID, "most recently created first")
	assert.Equal(t, first.ID, messages[1].ID)
}

func TestAPI_Edit(t *testing.T) {
	s := setupServer(t)

	res := createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodPut, "/api/messages/1", map[string]string{
		"title":     "Editado",
		"body":      "Cuerpo nuevo",
		"editToken": res.EditToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())

	messages := listMessages(t, s)
	require.Len(t, messages, 1)
	msg := messages[0]
	assert.Equal(t, "Editado", msg.Title)
	assert.Equal(t, "Cuerpo nuevo", msg.Body)
	assert.Equal(t, "ana", msg.Username, "username unchanged")

	created, err := time.Parse(time.RFC3339Nano, msg.CreatedAt)
	require.NoError(t, err)
	updated, err := time.Parse(time.RFC3339Nano, msg.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, updated.After(created), "updatedAt advances on edit")
}

func TestAPI_Edit_IgnoresUsernameField(t *testing.T) {
	s := setupServer(t)

	res := createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodPut, "/api/messages/1", map[string]string{
		"username":  "mallory",
		"title":     "Editado",
		"body":      "Cuerpo",
		"editToken": res.EditToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	messages := listMessages(t, s)
	assert.Equal(t, "ana", messages[0].Username)
}

func TestAPI_Edit_WrongToken(t *testing.T) {
	s := setupServer(t)

	createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodPut, "/api/messages/1", map[string]string{
		"title":     "Editado",
		"body":      "Cuerpo",
		"editToken": "x",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Message unchanged
	messages := listMessages(t, s)
	assert.Equal(t, "Hola", messages[0].Title)
}

func TestAPI_Edit_NonexistentID(t *testing.T) {
	s := setupServer(t)

	// Same signal as a wrong token: existence is not leaked
	rec := doJSON(t, s, http.MethodPut, "/api/messages/99", map[string]string{
		"title":     "Editado",
		"body":      "Cuerpo",
		"editToken": "x",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPI_Edit_MissingToken(t *testing.T) {
	s := setupServer(t)

	createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodPut, "/api/messages/1", map[string]string{
		"title": "Editado",
		"body":  "Cuerpo",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "editToken")
}

func TestAPI_Edit_ValidationError(t *testing.T) {
	s := setupServer(t)

	res := createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodPut, "/api/messages/1", map[string]string{
		"title":     "",
		"body":      "Cuerpo",
		"editToken": res.EditToken,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decode(t, rec, &body)
	assert.Contains(t, body.Errors, "title")
}

func TestAPI_Edit_InvalidID(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/messages/abc", map[string]string{
		"title":     "Editado",
		"body":      "Cuerpo",
		"editToken": "tok",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Delete(t *testing.T) {
	s := setupServer(t)

	res := createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodDelete, "/api/messages/1", map[string]string{
		"editToken": res.EditToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())

	assert.Empty(t, listMessages(t, s))

	// Delete is terminal: the retired id rejects all further mutations
	rec = doJSON(t, s, http.MethodDelete, "/api/messages/1", map[string]string{
		"editToken": res.EditToken,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, s, http.MethodPut, "/api/messages/1", map[string]string{
		"title":     "T",
		"body":      "B",
		"editToken": res.EditToken,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPI_Delete_WrongToken(t *testing.T) {
	s := setupServer(t)

	createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodDelete, "/api/messages/1", map[string]string{
		"editToken": "x",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, listMessages(t, s), 1)
}

func TestAPI_Delete_MissingToken(t *testing.T) {
	s := setupServer(t)

	createMessage(t, s, "ana", "Hola", "Primer mensaje")

	rec := doJSON(t, s, http.MethodDelete, "/api/messages/1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Delete_TokenForDifferentMessage(t *testing.T) {
	s := setupServer(t)

	createMessage(t, s, "ana", "Uno", "Cuerpo uno")
	second := createMessage(t, s, "bea", "Dos", "Cuerpo dos")

	rec := doJSON(t, s, http.MethodDelete, "/api/messages/1", map[string]string{
		"editToken": second.EditToken,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, listMessages(t, s), 2)
}

func TestAPI_Health(t *testing.T) {
	s := setupServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestAPI_ServesClient(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Message Board")
}
