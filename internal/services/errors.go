package services

import "go-todo-api/internal/repositories"

// ErrTodoNotFound は対象のTodoが存在しないことを表します。
// ハンドラーは errors.Is で判定して404に変換します。
var ErrTodoNotFound = repositories.ErrTodoNotFound
