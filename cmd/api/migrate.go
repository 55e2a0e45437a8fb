package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"go-todo-api/internal/repositories"
	"go-todo-api/internal/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the todos table if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		log.Println("Schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all todos with the sample data set",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		svc := services.NewTodoService(repositories.NewTodoRepository(db))
		count, err := svc.LoadSampleData(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Total todos: %d\n", count)
		return nil
	},
}
