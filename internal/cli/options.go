package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by the CLI. Flags win over the environment.
const (
	EnvDir         = "BOTFLOW_DIR"
	EnvRedisAddr   = "BOTFLOW_REDIS_ADDR"
	EnvRedisPrefix = "BOTFLOW_REDIS_PREFIX"
	EnvPort        = "BOTFLOW_PORT"
)

// Options is the configuration shared by every command.
type Options struct {
	Dir         string // Flow documents, used when no Redis address is set
	Debug       bool
	RedisAddr   string
	RedisPrefix string
}

// LoadEnv loads .env style files into the process environment.
// Missing files are skipped and variables already set are left alone.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// EnvOr returns the value of key, or fallback when it is unset or empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
