// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Atlas API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, store, cache)

# Endpoints

Health (no auth):

	GET /health

Accounts:

	POST /api/auth/signup          - Create account (no auth)
	POST /api/auth/login           - Issue token (no auth)
	GET  /api/auth/me              - Current user
	POST /api/auth/change-password - Change password

Library:

	GET          /api/library
	GET, POST    /api/subjects
	PATCH,DELETE /api/subjects/{id}
	GET, POST    /api/subjects/{id}/notebooks
	GET          /api/notebooks/inbox?type=tablet
	PATCH,DELETE /api/notebooks/{id}
	GET          /api/notebooks/{id}/notes

Notes:

	POST     /api/notes
	POST     /api/device/notes
	GET      /api/notes/{id}
	PUT      /api/notes/{id}/summary
	GET, PUT /api/notes/{id}/ocr
	GET,POST /api/notes/{id}/strokes
	GET      /api/notes/{id}/ink, ink.svg, ink.png
	POST     /api/notes/{id}/upload
	GET      /api/notes/{id}/files/{fileID}
	GET, PUT /api/notes/{id}/flashcards

Decks:

	GET /api/decks
	GET /api/decks/{id}

All /api routes are logged; everything except signup and login requires a
bearer token.
*/
package router
