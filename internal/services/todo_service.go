package services

import (
	"context"
	"time"

	"go-todo-api/internal/models"
)

// TodoStore はTodoServiceが必要とする永続化操作です。
// repositories.TodoRepository がこれを実装します。
type TodoStore interface {
	FindAll(ctx context.Context) ([]*models.Todo, error)
	FindByID(ctx context.Context, id int64) (*models.Todo, error)
	FindByCompleted(ctx context.Context, completed bool) ([]*models.Todo, error)
	FindByTitleContaining(ctx context.Context, term string) ([]*models.Todo, error)
	Save(ctx context.Context, t *models.Todo) (*models.Todo, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// TodoService はTodo関連のビジネスロジックを扱います。
type TodoService struct {
	todoRepo TodoStore
	now      func() time.Time
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo TodoStore) *TodoService {
	return &TodoService{todoRepo: todoRepo, now: time.Now}
}

// GetAllTodos はすべてのTodoを取得します。
func (s *TodoService) GetAllTodos(ctx context.Context) ([]*models.Todo, error) {
	return s.todoRepo.FindAll(ctx)
}

// GetTodoByID は指定IDのTodoを取得します。存在しない場合は ErrTodoNotFound を返します。
func (s *TodoService) GetTodoByID(ctx context.Context, id int64) (*models.Todo, error) {
	return s.todoRepo.FindByID(ctx, id)
}

// GetTodosByStatus は完了状態でTodoを絞り込みます。
func (s *TodoService) GetTodosByStatus(ctx context.Context, completed bool) ([]*models.Todo, error) {
	return s.todoRepo.FindByCompleted(ctx, completed)
}

// SearchTodos はタイトルの部分一致 (大文字小文字を区別しない) でTodoを検索します。
func (s *TodoService) SearchTodos(ctx context.Context, title string) ([]*models.Todo, error) {
	return s.todoRepo.FindByTitleContaining(ctx, title)
}

// CreateTodo は新しいTodoを作成します。IDと日時はストアが採番・設定します。
func (s *TodoService) CreateTodo(ctx context.Context, draft *models.Todo) (*models.Todo, error) {
	todo := &models.Todo{
		Title:       draft.Title,
		Description: draft.Description,
		Completed:   draft.Completed,
	}
	return s.todoRepo.Save(ctx, todo)
}

// UpdateTodo はTodoのタイトル・詳細・完了状態を置き換えます。
// IDと作成日時は details からは取り込みません。
func (s *TodoService) UpdateTodo(ctx context.Context, id int64, details *models.Todo) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	todo.Title = details.Title
	todo.Description = details.Description
	todo.Completed = details.Completed
	todo.UpdatedAt = s.touch(todo.UpdatedAt)

	return s.todoRepo.Save(ctx, todo)
}

// ToggleTodoStatus は完了状態を反転します。
func (s *TodoService) ToggleTodoStatus(ctx context.Context, id int64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	todo.Completed = !todo.Completed
	todo.UpdatedAt = s.touch(todo.UpdatedAt)

	return s.todoRepo.Save(ctx, todo)
}

// DeleteTodo はTodoを削除します。存在しない場合は ErrTodoNotFound を返します。
func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	exists, err := s.todoRepo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTodoNotFound
	}
	return s.todoRepo.DeleteByID(ctx, id)
}

// DeleteAllTodos はすべてのTodoを削除します。
func (s *TodoService) DeleteAllTodos(ctx context.Context) error {
	return s.todoRepo.DeleteAll(ctx)
}

// CountTodos はTodoの件数を返します。
func (s *TodoService) CountTodos(ctx context.Context) (int64, error) {
	return s.todoRepo.Count(ctx)
}

// touch は新しい updated_at を返します。時計が戻っても前回の値より小さくはしません。
func (s *TodoService) touch(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if now.Before(prev) {
		return prev
	}
	return now
}
