package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-todo-api/internal/models"
	"go-todo-api/internal/services"
)

// RequestIDKey はリクエストIDを gin.Context に格納するキーです。
const RequestIDKey = "request_id"

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	RegisterValidators()
	return &TodoHandler{todoService: todoService}
}

// GetTodosHandler はTodoリストを取得します。completed クエリがあれば完了状態で絞り込みます。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	var (
		todos []*models.Todo
		err   error
	)

	if raw, ok := c.GetQuery("completed"); ok {
		completed, perr := strconv.ParseBool(raw)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completed flag", "details": perr.Error()})
			return
		}
		todos, err = h.todoService.GetTodosByStatus(c.Request.Context(), completed)
	} else {
		todos, err = h.todoService.GetAllTodos(c.Request.Context())
	}

	if err != nil {
		serverError(c, "Failed to fetch todos", err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodoByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		serverError(c, "Failed to fetch todo", err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// SearchTodosHandler はタイトルでTodoを検索します。title クエリは必須です (空文字は全件)。
func (h *TodoHandler) SearchTodosHandler(c *gin.Context) {
	title, ok := c.GetQuery("title")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'title' is required"})
		return
	}

	todos, err := h.todoService.SearchTodos(c.Request.Context(), title)
	if err != nil {
		serverError(c, "Failed to search todos", err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	req, ok := bindTodoRequest(c)
	if !ok {
		return
	}

	createdTodo, err := h.todoService.CreateTodo(c.Request.Context(), req.ToTodo())
	if err != nil {
		serverError(c, "Failed to save todo to database", err)
		return
	}
	c.JSON(http.StatusCreated, createdTodo)
}

// UpdateTodoHandler はTodoを更新します。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, ok := bindTodoRequest(c)
	if !ok {
		return
	}

	updatedTodo, err := h.todoService.UpdateTodo(c.Request.Context(), id, req.ToTodo())
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		serverError(c, "Failed to update todo", err)
		return
	}
	c.JSON(http.StatusOK, updatedTodo)
}

// ToggleTodoHandler はTodoの完了状態を反転します。
func (h *TodoHandler) ToggleTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	updatedTodo, err := h.todoService.ToggleTodoStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		serverError(c, "Failed to toggle todo", err)
		return
	}
	c.JSON(http.StatusOK, updatedTodo)
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		serverError(c, "Failed to delete todo", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

// DeleteAllTodosHandler はすべてのTodoを削除します。
func (h *TodoHandler) DeleteAllTodosHandler(c *gin.Context) {
	if err := h.todoService.DeleteAllTodos(c.Request.Context()); err != nil {
		serverError(c, "Failed to delete todos", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All todos deleted successfully"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}

func bindTodoRequest(c *gin.Context) (*models.TodoRequest, bool) {
	var req models.TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details, ok := validationDetails(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return nil, false
	}
	return &req, true
}

func serverError(c *gin.Context, msg string, err error) {
	log.Printf("[%s] %s: %v", c.GetString(RequestIDKey), msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
