package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-api/internal/config"
)

func TestGetDSN_MySQL(t *testing.T) {
	dsn := GetDSN(config.DBConfig{
		Driver: "mysql", User: "todo", Pass: "secret", Host: "db", Port: "3306", Name: "todos",
	})

	assert.True(t, strings.HasPrefix(dsn, "todo:secret@tcp(db:3306)/todos?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")
}

func TestGetDSN_Postgres(t *testing.T) {
	dsn := GetDSN(config.DBConfig{
		Driver: "postgres", User: "todo", Pass: "secret", Host: "db", Port: "5432", Name: "todos", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=todo password=secret dbname=todos sslmode=disable", dsn)
}

func TestGetDSN_SQLite(t *testing.T) {
	assert.Equal(t, ":memory:", GetDSN(config.DBConfig{Driver: "sqlite", Path: ":memory:"}))
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DBConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, SQLite, DialectOf(db))

	require.NoError(t, Migrate(ctx, db))
	// 2回目も成功すること
	require.NoError(t, Migrate(ctx, db))

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM todos"))
	assert.Equal(t, 0, count)
}
