// Package modelsはTodoを定義します。
package models

import (
	"time"
)

// Todo はToDoタスクのデータベース構造体を表します。
// JSONタグ: クライアントとの通信用
// dbタグ: sqlxでのカラムマッピング用
type Todo struct {
	ID          int64     `json:"id" db:"id"`                   // 主キー
	Title       string    `json:"title" db:"title"`             // タスクのタイトル（必須）
	Description *string   `json:"description" db:"description"` // 詳細（任意）
	Completed   bool      `json:"completed" db:"completed"`     // 完了状態
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`    // 作成日時
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`    // 更新日時
}

// TodoRequest は作成・更新リクエストのボディです。
// id や日時はクライアントから受け取らないため含めません。
type TodoRequest struct {
	Title       string  `json:"title" binding:"required,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Completed   *bool   `json:"completed"`
}

// ToTodo はリクエストをTodoに変換します。completed が省略された場合は false です。
func (r *TodoRequest) ToTodo() *Todo {
	t := &Todo{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Completed != nil {
		t.Completed = *r.Completed
	}
	return t
}
