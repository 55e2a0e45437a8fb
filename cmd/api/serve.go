package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"go-todo-api/internal/repositories"
	"go-todo-api/internal/routes"
	"go-todo-api/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.SeedData {
			svc := services.NewTodoService(repositories.NewTodoRepository(db))
			if _, err := svc.LoadSampleData(ctx); err != nil {
				return fmt.Errorf("loading sample data: %w", err)
			}
		}

		gin.SetMode(cfg.GinMode)
		srv := &http.Server{
			Addr:    cfg.Addr(),
			Handler: routes.SetupRouter(db, cfg),
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Server listening on %s (base path %q)...", srv.Addr, cfg.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	},
}
