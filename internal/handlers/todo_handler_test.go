package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-api/internal/handlers"
	"go-todo-api/internal/models"
	"go-todo-api/internal/services"
	"go-todo-api/testutil"
)

func decodeTodos(t *testing.T, w *httptest.ResponseRecorder) []models.Todo {
	t.Helper()
	var todos []models.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos), "Response should be a JSON array: %s", w.Body.String())
	return todos
}

func decodeTodo(t *testing.T, w *httptest.ResponseRecorder) models.Todo {
	t.Helper()
	var todo models.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo), "Response should be a JSON todo object: %s", w.Body.String())
	return todo
}

func TestCreateTodo_Success(t *testing.T) {
	_, r, repo := testutil.SetupTestDB(t)

	payload := map[string]interface{}{"title": "Buy milk", "description": "2%", "completed": false}
	w := testutil.DoJSON(t, r, http.MethodPost, "/api/todos", payload)

	require.Equal(t, http.StatusCreated, w.Code, "Expected HTTP Status Code 201 Created")
	created := decodeTodo(t, w)
	assert.NotZero(t, created.ID, "Expected a non-zero Todo ID")
	assert.Equal(t, "Buy milk", created.Title)
	require.NotNil(t, created.Description)
	assert.Equal(t, "2%", *created.Description)
	assert.False(t, created.Completed)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt), "Expected createdAt == updatedAt")
	assert.WithinDuration(t, time.Now(), created.CreatedAt, 5*time.Second)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, stored.Title)
}

func TestCreateTodo_WireFormat(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/todos", map[string]interface{}{"title": "shape"})
	require.Equal(t, http.StatusCreated, w.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, key := range []string{"id", "title", "description", "completed", "createdAt", "updatedAt"} {
		assert.Contains(t, raw, key)
	}
	assert.Nil(t, raw["description"])
	assert.Equal(t, false, raw["completed"], "completed defaults to false")
}

func TestCreateTodo_IgnoresClientSuppliedIDAndTimestamps(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)

	payload := map[string]interface{}{"id": 500, "title": "mine", "createdAt": "2000-01-01T00:00:00Z"}
	w := testutil.DoJSON(t, r, http.MethodPost, "/api/todos", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	created := decodeTodo(t, w)
	assert.NotEqual(t, int64(500), created.ID)
	assert.True(t, created.CreatedAt.After(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCreateTodo_ValidationErrors(t *testing.T) {
	_, r, repo := testutil.SetupTestDB(t)

	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantFields []string
	}{
		{"missing title", map[string]interface{}{"description": "x"}, []string{"title"}},
		{"empty title", map[string]interface{}{"title": ""}, []string{"title"}},
		{"blank title", map[string]interface{}{"title": "   "}, []string{"title"}},
		{"title too long", map[string]interface{}{"title": strings.Repeat("a", 201)}, []string{"title"}},
		{"description too long", map[string]interface{}{"title": "ok", "description": strings.Repeat("d", 1001)}, []string{"description"}},
		{"both invalid", map[string]interface{}{"title": strings.Repeat("a", 201), "description": strings.Repeat("d", 1001)}, []string{"title", "description"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoJSON(t, r, http.MethodPost, "/api/todos", tt.payload)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var body struct {
				Error   string            `json:"error"`
				Details map[string]string `json:"details"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Validation failed", body.Error)
			assert.Len(t, body.Details, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, body.Details, f)
			}
		})
	}

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "Invalid drafts must not be stored")
}

func TestCreateTodo_BoundaryLengthsAccepted(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)

	payload := map[string]interface{}{"title": strings.Repeat("あ", 200), "description": strings.Repeat("d", 1000)}
	w := testutil.DoJSON(t, r, http.MethodPost, "/api/todos", payload)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCreateTodo_MalformedJSON(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request payload")
}

func TestGetTodos_ListAndFilter(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String(), "Empty list should serialise as []")

	done := testutil.CreateTestTodo(t, r, "done", true)
	open := testutil.CreateTestTodo(t, r, "open", false)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeTodos(t, w), 2)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/todos?completed=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	todos := decodeTodos(t, w)
	require.Len(t, todos, 1)
	assert.Equal(t, done.ID, todos[0].ID)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/todos?completed=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	todos = decodeTodos(t, w)
	require.Len(t, todos, 1)
	assert.Equal(t, open.ID, todos[0].ID)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/todos?completed=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTodoByID(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)
	created := testutil.CreateTestTodo(t, r, "find me", false)

	w := testutil.DoJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "find me", decodeTodo(t, w).Title)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/todos/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String(), "404 should have an empty body")

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/todos/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchTodos(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)
	testutil.CreateTestTodo(t, r, "Complete Module 01", true)
	testutil.CreateTestTodo(t, r, "Write report", false)

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/todos/search?title=MODULE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	todos := decodeTodos(t, w)
	require.Len(t, todos, 1)
	assert.Equal(t, "Complete Module 01", todos[0].Title)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/todos/search?title=", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeTodos(t, w), 2, "Empty term matches every todo")

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/todos/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTodo(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)
	created := testutil.CreateTestTodo(t, r, "before", false)
	path := fmt.Sprintf("/api/todos/%d", created.ID)

	payload := map[string]interface{}{"title": "after", "description": "details", "completed": true}
	w := testutil.DoJSON(t, r, http.MethodPut, path, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeTodo(t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "after", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "details", *updated.Description)
	assert.True(t, updated.Completed)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "createdAt must not change")
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt), "updatedAt must not go backwards")

	w = testutil.DoJSON(t, r, http.MethodPut, "/api/todos/99999", payload)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestUpdateTodo_BlankTitleRejectedBeforeStore(t *testing.T) {
	_, r, repo := testutil.SetupTestDB(t)
	created := testutil.CreateTestTodo(t, r, "keep me", false)

	w := testutil.DoJSON(t, r, http.MethodPut, fmt.Sprintf("/api/todos/%d", created.ID),
		map[string]interface{}{"title": "", "completed": true})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title")

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", stored.Title)
	assert.False(t, stored.Completed)
	assert.True(t, stored.UpdatedAt.Equal(created.UpdatedAt))

	// 存在しないIDでもバリデーションが先に行われる
	w = testutil.DoJSON(t, r, http.MethodPut, "/api/todos/99999", map[string]interface{}{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleTodo(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)
	created := testutil.CreateTestTodo(t, r, "flip", false)
	path := fmt.Sprintf("/api/todos/%d/toggle", created.ID)

	w := testutil.DoJSON(t, r, http.MethodPatch, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeTodo(t, w).Completed)

	w = testutil.DoJSON(t, r, http.MethodPatch, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeTodo(t, w).Completed)

	w = testutil.DoJSON(t, r, http.MethodPatch, "/api/todos/99999/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestDeleteTodo(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)
	created := testutil.CreateTestTodo(t, r, "bye", false)
	path := fmt.Sprintf("/api/todos/%d", created.ID)

	w := testutil.DoJSON(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Todo deleted successfully"}`, w.Body.String())

	w = testutil.DoJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())

	w = testutil.DoJSON(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAllTodos(t *testing.T) {
	_, r, _ := testutil.SetupTestDB(t)
	testutil.CreateTestTodo(t, r, "a", false)
	testutil.CreateTestTodo(t, r, "b", true)

	for i := 0; i < 2; i++ {
		w := testutil.DoJSON(t, r, http.MethodDelete, "/api/todos", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"All todos deleted successfully"}`, w.Body.String())
	}

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

// brokenStore は永続化層の障害を再現します。
type brokenStore struct {
	services.TodoStore
}

var errStoreDown = errors.New("database is down")

func (brokenStore) FindAll(context.Context) ([]*models.Todo, error) { return nil, errStoreDown }
func (brokenStore) DeleteAll(context.Context) error                 { return errStoreDown }
func (brokenStore) Save(context.Context, *models.Todo) (*models.Todo, error) {
	return nil, errStoreDown
}

func TestStoreErrorsBecomeServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewTodoHandler(services.NewTodoService(brokenStore{}))
	r := gin.New()
	r.GET("/todos", h.GetTodosHandler)
	r.POST("/todos", h.CreateTodoHandler)
	r.DELETE("/todos", h.DeleteAllTodosHandler)

	w := testutil.DoJSON(t, r, http.MethodGet, "/todos", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), errStoreDown.Error(), "internal errors are not leaked")

	w = testutil.DoJSON(t, r, http.MethodPost, "/todos", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = testutil.DoJSON(t, r, http.MethodDelete, "/todos", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
