// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Atlas API server.

Atlas is a study notebook service: tablets upload handwritten stroke
captures, outside services attach summaries, OCR text and flashcards, and
clients browse subjects, notebooks and notes and render the ink.

# Starting the Server

The server reads an optional .env file, then environment variables or CLI
flags:

	DATABASE_URL=atlas.db JWT_SECRET=dev go run .

Or with flags:

	go run . -p 8080 -t postgres -d "postgres://..." -jwt-secret dev

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): HS256 signing secret for access tokens

Optional settings:

  - PORT (-p): Server port (default: 8080)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - JWT_EXPIRES_SECONDS (-jwt-expires): Token lifetime (default: 7 days)
  - STORAGE_DIR (-storage-dir): Uploaded files (default: ./storage)
  - CORS_ORIGINS (-cors-origins): Comma-separated allowed origins
  - RENDER_CACHE_SIZE (-render-cache): Cached drawings (default: 256)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (auth, library, notes, ink, files, flashcards)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Auth, CORS, logging, JSON helpers
  - ink: Stroke normalization, SVG and PNG rendering, render cache
  - markdown: Summary and OCR rendering to sanitized HTML
  - storage: Uploaded files and thumbnails
  - models: Request/response types
  - auth: Passwords, access tokens, ID generation
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

The atlasctl command (cmd/atlasctl) renders capture files offline and talks
to a running server through package atlasclient.

See package documentation for each component.
*/
package main
