// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort            = 8080
	DefaultJWTExpiry       = 7 * 24 * time.Hour
	DefaultStorageDir      = "./storage"
	DefaultRenderCacheSize = 256
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	JWTSecret       string
	JWTExpiry       time.Duration
	StorageDir      string
	CORSOrigins     []string
	RenderCacheSize int
}

// LoadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills in the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var corsOrigins string
	var expirySeconds int

	fs := flag.NewFlagSet("atlas", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "JWT signing secret (prefer env)")
	fs.IntVar(&expirySeconds, "jwt-expires", 0, "Access token lifetime in seconds")

	// Rendering and files
	fs.StringVar(&cfg.StorageDir, "storage-dir", "", "Directory for uploaded files")
	fs.IntVar(&cfg.RenderCacheSize, "render-cache", -1, "Number of rendered drawings to cache")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if expirySeconds == 0 {
		secs, err := envInt("JWT_EXPIRES_SECONDS", int(DefaultJWTExpiry/time.Second))
		if err != nil {
			return Config{}, err
		}
		expirySeconds = secs
	}
	if expirySeconds <= 0 {
		return Config{}, errors.New("JWT_EXPIRES_SECONDS must be positive")
	}
	cfg.JWTExpiry = time.Duration(expirySeconds) * time.Second

	if cfg.StorageDir == "" {
		cfg.StorageDir = os.Getenv("STORAGE_DIR")
		if cfg.StorageDir == "" {
			cfg.StorageDir = DefaultStorageDir
		}
	}

	if corsOrigins == "" {
		corsOrigins = os.Getenv("CORS_ORIGINS")
	}
	cfg.CORSOrigins = splitList(corsOrigins)

	if cfg.RenderCacheSize < 0 {
		size, err := envInt("RENDER_CACHE_SIZE", DefaultRenderCacheSize)
		if err != nil {
			return Config{}, err
		}
		if size < 0 {
			return Config{}, errors.New("RENDER_CACHE_SIZE cannot be negative")
		}
		cfg.RenderCacheSize = size
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
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
