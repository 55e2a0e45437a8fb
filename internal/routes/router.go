// Package routesはroutingを行います。
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"go-todo-api/internal/config"
	"go-todo-api/internal/handlers"
	"go-todo-api/internal/repositories"
	"go-todo-api/internal/services"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sqlx.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	r.Use(RequestIDMiddleware())

	// リポジトリ
	todoRepo := repositories.NewTodoRepository(db)

	// サービス
	todoService := services.NewTodoService(todoRepo)

	// ハンドラー
	todoHandler := handlers.NewTodoHandler(todoService)
	healthHandler := handlers.NewHealthHandler(db, todoService)

	// ルーティング
	api := r.Group(cfg.BasePath)
	api.GET("/dbcheck", healthHandler.DBCheckHandler)

	todos := api.Group("/todos")
	{
		todos.GET("", todoHandler.GetTodosHandler)
		todos.GET("/health", healthHandler.HealthHandler)
		todos.GET("/search", todoHandler.SearchTodosHandler)
		todos.GET("/:id", todoHandler.GetTodoByIDHandler)
		todos.POST("", todoHandler.CreateTodoHandler)
		todos.PUT("/:id", todoHandler.UpdateTodoHandler)
		todos.PATCH("/:id/toggle", todoHandler.ToggleTodoHandler)
		todos.DELETE("/:id", todoHandler.DeleteTodoHandler)
		todos.DELETE("", todoHandler.DeleteAllTodosHandler)
	}

	return r
}

// corsConfig はCORS設定を返します。"*" を含む場合はすべてのオリジンを許可します。
func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"*"}
	corsCfg.ExposeHeaders = []string{RequestIDHeader}
	corsCfg.MaxAge = time.Hour

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}
