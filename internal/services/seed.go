package services

import (
	"context"
	"fmt"
	"log"

	"go-todo-api/internal/models"
)

func strPtr(s string) *string { return &s }

// SampleTodos は初期データとして投入するTodoです。
func SampleTodos() []models.Todo {
	return []models.Todo{
		{
			Title:       "Complete Module 01 - Getting Started",
			Description: strPtr("Set up the development environment and verify all tools are installed"),
			Completed:   true,
		},
		{
			Title:       "Explore Module 02 - Backend API",
			Description: strPtr("Understand the backend application structure and REST API endpoints"),
		},
		{
			Title:       "Build Module 03 - React Frontend",
			Description: strPtr("Create the React application and connect it to the backend API"),
		},
		{
			Title:       "Configure CI/CD Pipeline",
			Description: strPtr("Set up GitHub Actions for automated deployment"),
		},
		{
			Title:       "Deploy to Production",
			Description: strPtr("Deploy backend to Render and frontend to GitHub Pages"),
		},
	}
}

// LoadSampleData は既存のTodoを全削除してからサンプルデータを投入し、投入後の件数を返します。
func (s *TodoService) LoadSampleData(ctx context.Context) (int64, error) {
	if err := s.DeleteAllTodos(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear todos: %w", err)
	}
	for _, sample := range SampleTodos() {
		if _, err := s.CreateTodo(ctx, &sample); err != nil {
			return 0, fmt.Errorf("failed to seed todo %q: %w", sample.Title, err)
		}
	}

	count, err := s.CountTodos(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("Sample data loaded successfully! Total todos: %d", count)
	return count, nil
}
