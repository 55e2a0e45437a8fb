package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"go-todo-api/internal/config"
	"go-todo-api/internal/database"
	"go-todo-api/internal/models"
	"go-todo-api/internal/repositories"
	"go-todo-api/internal/routes"
)

// TestConfig はテスト用の設定 (インメモリSQLite、/api 配下) を返します。
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	v.Set("db_driver", "sqlite")
	v.Set("db_path", ":memory:")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

// SetupTestDB はテスト用のインメモリデータベースを作成し、テーブルを作成します。
// 戻り値のDBはテスト終了時に閉じられます。
func SetupTestDB(t *testing.T) (*sqlx.DB, *gin.Engine, *repositories.TodoRepository) {
	t.Helper()
	cfg := TestConfig(t)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DB)
	require.NoError(t, err, "Failed to open database connection")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db), "Failed to create todos table")

	router := SetupTestRouter(t, db, cfg)
	todoRepo := repositories.NewTodoRepository(db)

	return db, router, todoRepo
}

// SetupTestRouter はテスト用のGinルーターをセットアップします。
func SetupTestRouter(t *testing.T, db *sqlx.DB, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return routes.SetupRouter(db, cfg)
}

// DoJSON はJSONボディ付きのリクエストをルーターに送り、レスポンスを返します。
func DoJSON(t *testing.T, router http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTodo はAPI経由でテスト用のTODOを作成します。
func CreateTestTodo(t *testing.T, router http.Handler, title string, completed bool) *models.Todo {
	t.Helper()
	todoPayload := map[string]interface{}{
		"title":     title,
		"completed": completed,
	}

	resp := DoJSON(t, router, http.MethodPost, "/api/todos", todoPayload)
	require.Equal(t, http.StatusCreated, resp.Code, "TODO作成に失敗しました: %s", resp.Body.String())

	var createdTodo models.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &createdTodo))
	return &createdTodo
}
