// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"go-todo-api/internal/database"
	"go-todo-api/internal/models"
)

// ErrTodoNotFound はTODOが見つからない場合のエラーです。
var ErrTodoNotFound = errors.New("todo not found")

const todoColumns = "id, title, description, completed, created_at, updated_at"

// TodoRepository はtodosテーブルへのデータベース操作を行うための構造体です。
type TodoRepository struct {
	DB      *sqlx.DB
	dialect database.Dialect
	now     func() time.Time
}

// NewTodoRepository は新しいTodoRepositoryインスタンスを作成します。
func NewTodoRepository(db *sqlx.DB) *TodoRepository {
	return &TodoRepository{DB: db, dialect: database.DialectOf(db), now: time.Now}
}

// Now はリポジトリが保存に使う現在時刻 (UTC、マイクロ秒精度) を返します。
func (r *TodoRepository) Now() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// FindAll はすべてのTodoタスクをID順に取得します。
func (r *TodoRepository) FindAll(ctx context.Context) ([]*models.Todo, error) {
	return r.selectTodos(ctx, "SELECT "+todoColumns+" FROM todos ORDER BY id")
}

// FindByID は指定されたIDのTodoタスクを取得します。
func (r *TodoRepository) FindByID(ctx context.Context, id int64) (*models.Todo, error) {
	var t models.Todo
	err := r.DB.GetContext(ctx, &t, r.DB.Rebind("SELECT "+todoColumns+" FROM todos WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		log.Printf("Failed to query todo by ID: %v", err)
		return nil, fmt.Errorf("could not query todo %d: %w", id, err)
	}
	return &t, nil
}

// FindByCompleted は完了状態が一致するTodoタスクを取得します。
func (r *TodoRepository) FindByCompleted(ctx context.Context, completed bool) ([]*models.Todo, error) {
	return r.selectTodos(ctx, "SELECT "+todoColumns+" FROM todos WHERE completed = ? ORDER BY id", completed)
}

// FindByTitleContaining はタイトルに term を含むTodoタスクを大文字小文字を区別せずに取得します。
// term はワイルドカードとして解釈されません。空文字はすべてに一致します。
func (r *TodoRepository) FindByTitleContaining(ctx context.Context, term string) ([]*models.Todo, error) {
	if term == "" {
		return r.FindAll(ctx)
	}
	lowered := database.LowerFunc(r.dialect) + "(title)"
	position := "INSTR(" + lowered + ", ?)"
	if r.dialect == database.Postgres {
		position = "STRPOS(" + lowered + ", ?)"
	}
	query := "SELECT " + todoColumns + " FROM todos WHERE " + position + " > 0 ORDER BY id"
	return r.selectTodos(ctx, query, strings.ToLower(term))
}

// Save はIDが未設定なら挿入し、設定済みなら既存のレコードを上書きします。
// 挿入時は created_at / updated_at が未設定であれば現在時刻を設定します。
// 更新時は created_at を書き換えず、updated_at は呼び出し側が設定した値を保存します。
func (r *TodoRepository) Save(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	if t.ID == 0 {
		return r.insert(ctx, t)
	}
	return r.update(ctx, t)
}

func (r *TodoRepository) insert(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	now := r.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() || t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}

	query := "INSERT INTO todos (title, description, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	args := []interface{}{t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt}

	if r.dialect == database.Postgres {
		// lib/pq は LastInsertId をサポートしないため RETURNING を使う
		if err := r.DB.GetContext(ctx, &t.ID, r.DB.Rebind(query+" RETURNING id"), args...); err != nil {
			log.Printf("Failed to insert todo: %v", err)
			return nil, fmt.Errorf("could not insert todo: %w", err)
		}
		return t, nil
	}

	result, err := r.DB.ExecContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		log.Printf("Failed to insert todo: %v", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	t.ID = id
	return t, nil
}

func (r *TodoRepository) update(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = r.Now()
	}
	query := "UPDATE todos SET title = ?, description = ?, completed = ?, updated_at = ? WHERE id = ?"

	result, err := r.DB.ExecContext(ctx, r.DB.Rebind(query), t.Title, t.Description, t.Completed, t.UpdatedAt, t.ID)
	if err != nil {
		log.Printf("Failed to update todo: %v", err)
		return nil, fmt.Errorf("could not update todo %d: %w", t.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTodoNotFound
	}
	return t, nil
}

// ExistsByID は指定されたIDのTodoタスクが存在するかを返します。
func (r *TodoRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, r.DB.Rebind("SELECT COUNT(*) FROM todos WHERE id = ?"), id); err != nil {
		return false, fmt.Errorf("could not check todo %d: %w", id, err)
	}
	return n > 0, nil
}

// DeleteByID は指定されたIDのTodoタスクを削除します。
func (r *TodoRepository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		log.Printf("Failed to delete todo: %v", err)
		return fmt.Errorf("could not delete todo %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// DeleteAll はすべてのTodoタスクを削除します。IDの採番はリセットしません。
func (r *TodoRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM todos"); err != nil {
		log.Printf("Failed to delete todos: %v", err)
		return fmt.Errorf("could not delete todos: %w", err)
	}
	return nil
}

// Count はTodoタスクの件数を返します。
func (r *TodoRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM todos"); err != nil {
		return 0, fmt.Errorf("could not count todos: %w", err)
	}
	return n, nil
}

func (r *TodoRepository) selectTodos(ctx context.Context, query string, args ...interface{}) ([]*models.Todo, error) {
	todos := []*models.Todo{}
	if err := r.DB.SelectContext(ctx, &todos, r.DB.Rebind(query), args...); err != nil {
		log.Printf("Failed to query todos: %v", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	return todos, nil
}
