package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema は方言ごとの todos テーブル定義です。
// AUTO_INCREMENT / BIGSERIAL / AUTOINCREMENT のいずれも削除されたIDを再利用しません。
var schema = map[Dialect][]string{
	MySQL: {
		`CREATE TABLE IF NOT EXISTS todos (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description VARCHAR(1000) NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_todos_completed (completed)
		)`,
	},
	Postgres: {
		`CREATE TABLE IF NOT EXISTS todos (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description VARCHAR(1000),
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos (completed)`,
	},
	SQLite: {
		`CREATE TABLE IF NOT EXISTS todos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			completed BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos (completed)`,
	},
}

// Migrate は todos テーブルが存在しない場合に作成します。
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts, ok := schema[DialectOf(db)]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
