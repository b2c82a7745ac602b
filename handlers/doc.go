// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Atlas API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: Signup, login, current user, password changes
  - LibraryHandler: Subjects, notebooks, inboxes and notebook listings
  - NoteHandler: Note creation, details, summaries and OCR text
  - InkHandler: Stroke capture storage and ink rendering
  - FileHandler: File uploads, downloads and thumbnails
  - FlashcardHandler: Per-note flashcards and decks

Handlers are created via constructor functions:

	noteHandler := handlers.NewNoteHandler(db, cfg)
	inkHandler := handlers.NewInkHandler(db, cfg, cache)

Everything except signup and login runs behind middleware.RequireAuth,
which puts the caller's user ID on the request context. Ownership is always
checked through notebook.user_id; another user's resource is a 404.

# Library

New accounts get an "Unsorted" subject with an "Unsorted" notebook. Device
notes, and notes created without a notebook, go to the inbox notebook for
the device type under the "Inbox" subject. Only "tablet" is supported.

# Ink

Stroke captures are appended, never edited:

	POST /api/notes/{id}/strokes  → AddStrokes (assigns the next seq)
	GET  /api/notes/{id}/strokes  → ListStrokes (capture order)

Rendering normalizes the note's capture batch with package ink:

	GET /api/notes/{id}/ink      → GetInk (drawing JSON)
	GET /api/notes/{id}/ink.svg  → GetInkSVG
	GET /api/notes/{id}/ink.png  → GetInkPNG (?max=N, 404 with nothing to draw)

Drawings are cached per note and newest capture, so an append is visible
on the next render.

# Externally Produced Content

Summaries, OCR text and flashcards come from outside services. Handlers
store them and render Markdown to sanitized HTML on the way out.
*/
package handlers
