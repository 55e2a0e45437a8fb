package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-todo-api/internal/services"
)

// Pinger はデータベース接続の疎通確認ができるものです。*sqlx.DB が満たします。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェック系のエンドポイントを扱います。
type HealthHandler struct {
	db          Pinger
	todoService *services.TodoService
}

// NewHealthHandler は新しいHealthHandlerを作成します。
func NewHealthHandler(db Pinger, todoService *services.TodoService) *HealthHandler {
	return &HealthHandler{db: db, todoService: todoService}
}

// HealthHandler はAPIが稼働していることを返します。
func (h *HealthHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "TODO API is running"})
}

// DBCheckHandler はデータベース接続の健全性を確認します。
func (h *HealthHandler) DBCheckHandler(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.db.PingContext(ctx); err != nil {
		log.Printf("DB Ping failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}

	count, err := h.todoService.CountTodos(ctx)
	if err != nil {
		log.Printf("DB query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to execute query",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy", "count": count})
}
