// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadDotEnv seeds the environment from a .env file, then ParseFlags returns
a Config struct with all settings:

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 8080)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - JWTSecret: HMAC secret for access tokens (required)
  - JWTExpiry: Access token lifetime (default: 7 days)
  - StorageDir: Directory for uploaded note files (default: ./storage)
  - CORSOrigins: Allowed browser origins (empty allows any)
  - RenderCacheSize: Rendered drawings kept in memory (default: 256, 0 disables)

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	-jwt-secret     JWT signing secret
	-jwt-expires    Token lifetime in seconds
	-storage-dir    Upload directory
	-cors-origins   Comma-separated origins
	-render-cache   Render cache entries

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	JWT_SECRET          → -jwt-secret
	JWT_EXPIRES_SECONDS → -jwt-expires
	STORAGE_DIR         → -storage-dir
	CORS_ORIGINS        → -cors-origins
	RENDER_CACHE_SIZE   → -render-cache

CLI flags take precedence over environment variables, and real environment
variables take precedence over .env entries.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - JWT_SECRET must be provided
  - numeric settings must parse
*/
package cliparse
