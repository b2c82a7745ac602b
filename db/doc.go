// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open selects the driver from the configured type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

  - "postgres": github.com/lib/pq
  - "sqlite": modernc.org/sqlite (pure Go), with foreign keys enabled

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The SQL is limited to what both drivers accept, and queries elsewhere use
$N placeholders, which both understand.

# Tables

  - app_user: account with bcrypt password hash
  - subject: top-level grouping owned by a user
  - notebook: belongs to a subject; inbox notebooks carry inbox_type
  - note: title, device, stored summary and OCR text
  - note_capture: raw stroke captures, ordered by seq
  - note_file: uploaded files kept by the storage package
  - flashcard: question/answer pairs ordered by position

# Relationships

	app_user 1──* subject 1──* notebook 1──* note
	note 1──* note_capture
	note 1──* note_file
	note 1──* flashcard

All foreign keys use ON DELETE CASCADE.
*/
package db
