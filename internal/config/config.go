// Package config loads application configuration from environment
// variables, optionally seeded from a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // APP_ENV: "dev", "test", "prod"
	Port           string // APP_PORT: HTTP port to listen on
	LogLevel       string // LOG_LEVEL: zerolog level name
	DBDriver       string // DB_DRIVER: "mysql" or "sqlite3"
	DBUser         string // DB_USER
	DBPass         string // DB_PASS (optional)
	DBHost         string // DB_HOST
	DBPort         string // DB_PORT
	DBName         string // DB_NAME
	DBPath         string // DB_PATH: SQLite file
	SessionSecret  string // SESSION_SECRET: key for signing session cookies
	PasswordScheme string // PASSWORD_SCHEME: "sha256" or "bcrypt"
	SaltLength     int    // SALT_LENGTH: letters of salt in sha256 records
	BcryptCost     int    // BCRYPT_COST: cost when PASSWORD_SCHEME=bcrypt
	AMQPURL        string // RABBITMQ_URL or AMQP_URL
	ActivityLogDir string // ACTIVITY_LOG_DIR: where the activity consumer writes
}

// Load reads .env (when present) and the environment and returns the
// Config. Missing required variables are fatal.
func Load() Config {
	_ = godotenv.Load()
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

// FromEnv builds a Config using lookup to read variables. It reports
// every missing required variable at once.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}
	cfg := Config{
		Env:            e.str("APP_ENV", "dev"),
		Port:           e.str("APP_PORT", "8080"),
		LogLevel:       e.str("LOG_LEVEL", "info"),
		DBDriver:       strings.ToLower(e.str("DB_DRIVER", "mysql")),
		DBPass:         e.str("DB_PASS", ""),
		DBPath:         e.str("DB_PATH", "blog.db"),
		SessionSecret:  e.must("SESSION_SECRET"),
		PasswordScheme: strings.ToLower(e.str("PASSWORD_SCHEME", "sha256")),
		SaltLength:     e.intVal("SALT_LENGTH", 5),
		BcryptCost:     e.intVal("BCRYPT_COST", 10),
		AMQPURL:        e.str("RABBITMQ_URL", e.str("AMQP_URL", "")),
		ActivityLogDir: e.str("ACTIVITY_LOG_DIR", "logs"),
	}
	if cfg.DBDriver == "mysql" {
		cfg.DBUser = e.must("DB_USER")
		cfg.DBHost = e.must("DB_HOST")
		cfg.DBPort = e.must("DB_PORT")
		cfg.DBName = e.must("DB_NAME")
	}
	if len(e.missing) > 0 {
		return cfg, fmt.Errorf("missing required env vars: %s", strings.Join(e.missing, ", "))
	}
	if len(e.invalid) > 0 {
		return cfg, fmt.Errorf("invalid env vars: %s", strings.Join(e.invalid, ", "))
	}
	return cfg, nil
}
