// Package config はアプリケーション設定を環境変数・.env・フラグから読み込みます。
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DBConfig はデータベース接続設定です。
type DBConfig struct {
	Driver  string
	User    string
	Pass    string
	Host    string
	Port    string
	Name    string
	Path    string // sqlite のみ
	SSLMode string // postgres のみ
}

// Config はサーバー全体の設定です。
type Config struct {
	Port               string
	BasePath           string
	GinMode            string
	ShutdownTimeout    time.Duration
	SeedData           bool
	CORSAllowedOrigins []string
	DB                 DBConfig
}

// Addr はサーバーの待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}

var supportedDrivers = map[string]string{
	"mysql":    "3306",
	"postgres": "5432",
	"sqlite":   "",
}

// SetDefaults は viper にデフォルト値を登録します。
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("api_base_path", "/api")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("seed_data", false)
	v.SetDefault("cors_allowed_origins", "*")

	v.SetDefault("db_driver", "mysql")
	v.SetDefault("db_user", "")
	v.SetDefault("db_pass", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "")
	v.SetDefault("db_name", "todo")
	v.SetDefault("db_path", "todo.db")
	v.SetDefault("db_sslmode", "disable")
}

// LoadEnvFile は .env を読み込みます。ファイルが無い場合は無視します。
func LoadEnvFile(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("Warning: Could not load %s: %v", p, err)
		}
	}
}

// Load は viper から設定を組み立てます。v が nil の場合は新しいインスタンスを使います。
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("shutdown_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v.GetString("shutdown_timeout"), err)
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("db_driver")))
	defaultPort, ok := supportedDrivers[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want mysql, postgres or sqlite)", driver)
	}
	dbPort := v.GetString("db_port")
	if dbPort == "" {
		dbPort = defaultPort
	}

	cfg := &Config{
		Port:               v.GetString("port"),
		BasePath:           normalizeBasePath(v.GetString("api_base_path")),
		GinMode:            v.GetString("gin_mode"),
		ShutdownTimeout:    timeout,
		SeedData:           v.GetBool("seed_data"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		DB: DBConfig{
			Driver:  driver,
			User:    v.GetString("db_user"),
			Pass:    v.GetString("db_pass"),
			Host:    v.GetString("db_host"),
			Port:    dbPort,
			Name:    v.GetString("db_name"),
			Path:    v.GetString("db_path"),
			SSLMode: v.GetString("db_sslmode"),
		},
	}
	return cfg, nil
}

// normalizeBasePath は "/api/" や "api" を "/api" に揃えます。"/" は空文字になります。
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
