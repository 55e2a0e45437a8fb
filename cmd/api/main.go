package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-todo-api/internal/config"
	"go-todo-api/internal/database"
)

var (
	v       = viper.New()
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "todo-api",
	Short: "REST API for managing todos",
	Long: `todo-api serves a CRUD REST API for todo items backed by MySQL, PostgreSQL or SQLite.

Settings are read from flags, environment variables and an optional .env file,
in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnvFile(envFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "path to a .env file (ignored when missing)")
	flags.String("port", "", "HTTP port (env PORT)")
	flags.String("db-driver", "", "database driver: mysql, postgres or sqlite (env DB_DRIVER)")
	flags.String("db-path", "", "SQLite database file (env DB_PATH)")
	flags.Bool("seed", false, "load sample todos on startup (env SEED_DATA)")

	for key, flag := range map[string]string{
		"port":      "port",
		"db_driver": "db-driver",
		"db_path":   "db-path",
		"seed_data": "seed",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("Fatal: binding flag %s: %v", flag, err)
		}
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// openDatabase は設定を読み込み、接続してスキーマを作成します。
func openDatabase(ctx context.Context) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return cfg, db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
