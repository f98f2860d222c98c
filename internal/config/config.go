package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string
	PublicDir string // static frontend bundle; empty disables serving

	DBDriver string
	DBDSN    string

	BlobBasePath string // course/test images

	LogLevel string // debug|info
	LogFile  string // empty disables the rotating file sink

	CORSOrigins []string

	// keep-alive ticker for the serverless database
	KeepAliveInterval time.Duration
	ActivityTimeout   time.Duration
}

// FromEnv reads configuration from the environment, after loading a .env
// file when one is present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:          envOr("HTTP_ADDR", ":3002"),
		PublicDir:         envOr("PUBLIC_DIR", "./public"),
		DBDriver:          envOr("DB_DRIVER", "sqlite"),
		DBDSN:             envOr("DB_DSN", ""),
		BlobBasePath:      envOr("BLOB_BASE_PATH", "./data"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogFile:           envOr("LOG_FILE", ""),
		CORSOrigins:       csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:3002"),
		KeepAliveInterval: envDur("KEEP_ALIVE_INTERVAL", 2*time.Minute),
		ActivityTimeout:   envDur("ACTIVITY_TIMEOUT", 5*time.Minute),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
