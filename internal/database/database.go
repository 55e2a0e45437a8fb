package database

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"go-todo-api/internal/config"
)

// Dialect は対応しているSQL方言です。値は sqlx/database/sql のドライバー名と一致します。
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DialectOf は接続のドライバー名から方言を返します。
func DialectOf(db *sqlx.DB) Dialect {
	return Dialect(db.DriverName())
}

// GetDSN は設定から接続文字列 (DSN) を構築します。
func GetDSN(cfg config.DBConfig) string {
	switch Dialect(cfg.Driver) {
	case Postgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Pass, cfg.Name, cfg.SSLMode)
	case SQLite:
		return cfg.Path
	default:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Pass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		// 値が変わらないUPDATEでも一致した行数を返させる
		mc.ClientFoundRows = true
		return mc.FormatDSN()
	}
}

// Open はデータベース接続を初期化します。
func Open(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, GetDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if Dialect(cfg.Driver) == SQLite {
		// SQLite は書き込みが直列化されるため接続は1本に絞る (":memory:" は接続ごとに別DBになる)
		db.SetMaxOpenConns(1)
		if err := configureSQLite(ctx, db, cfg.Path); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Printf("Successfully connected to %s database!", cfg.Driver)
	return db, nil
}

func configureSQLite(ctx context.Context, db *sqlx.DB, path string) error {
	if path != ":memory:" && !strings.Contains(path, "mode=memory") {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("enabling WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}
	return nil
}
