// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/handlers"
	"github.com/danielhkuo/atlas/ink"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/storage"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, store *storage.Store, cache *ink.Cache) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	libraryHandler := handlers.NewLibraryHandler(db, cfg, store)
	noteHandler := handlers.NewNoteHandler(db, cfg)
	inkHandler := handlers.NewInkHandler(db, cfg, cache)
	fileHandler := handlers.NewFileHandler(db, cfg, store)
	flashcardHandler := handlers.NewFlashcardHandler(db, cfg)

	public := middleware.WithLogging
	requireAuth := middleware.RequireAuth(cfg.JWTSecret)
	private := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(requireAuth(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /api/auth/signup", public(authHandler.Signup))
	mux.HandleFunc("POST /api/auth/login", public(authHandler.Login))
	mux.HandleFunc("GET /api/auth/me", private(authHandler.Me))
	mux.HandleFunc("POST /api/auth/change-password", private(authHandler.ChangePassword))

	// Library: subjects and notebooks
	mux.HandleFunc("GET /api/library", private(libraryHandler.GetLibrary))
	mux.HandleFunc("GET /api/subjects", private(libraryHandler.ListSubjects))
	mux.HandleFunc("POST /api/subjects", private(libraryHandler.CreateSubject))
	mux.HandleFunc("PATCH /api/subjects/{id}", private(libraryHandler.UpdateSubject))
	mux.HandleFunc("DELETE /api/subjects/{id}", private(libraryHandler.DeleteSubject))
	mux.HandleFunc("GET /api/subjects/{id}/notebooks", private(libraryHandler.ListSubjectNotebooks))
	mux.HandleFunc("POST /api/subjects/{id}/notebooks", private(libraryHandler.CreateNotebook))
	mux.HandleFunc("GET /api/notebooks/inbox", private(libraryHandler.GetInbox))
	mux.HandleFunc("PATCH /api/notebooks/{id}", private(libraryHandler.UpdateNotebook))
	mux.HandleFunc("DELETE /api/notebooks/{id}", private(libraryHandler.DeleteNotebook))
	mux.HandleFunc("GET /api/notebooks/{id}/notes", private(libraryHandler.ListNotebookNotes))

	// Notes
	mux.HandleFunc("POST /api/notes", private(noteHandler.CreateNote))
	mux.HandleFunc("POST /api/device/notes", private(noteHandler.CreateDeviceNote))
	mux.HandleFunc("GET /api/notes/{id}", private(noteHandler.GetNote))
	mux.HandleFunc("PUT /api/notes/{id}/summary", private(noteHandler.PutSummary))
	mux.HandleFunc("GET /api/notes/{id}/ocr", private(noteHandler.GetOCR))
	mux.HandleFunc("PUT /api/notes/{id}/ocr", private(noteHandler.PutOCR))

	// Strokes and rendered ink
	mux.HandleFunc("POST /api/notes/{id}/strokes", private(inkHandler.AddStrokes))
	mux.HandleFunc("GET /api/notes/{id}/strokes", private(inkHandler.ListStrokes))
	mux.HandleFunc("GET /api/notes/{id}/ink", private(inkHandler.GetInk))
	mux.HandleFunc("GET /api/notes/{id}/ink.svg", private(inkHandler.GetInkSVG))
	mux.HandleFunc("GET /api/notes/{id}/ink.png", private(inkHandler.GetInkPNG))

	// Files
	mux.HandleFunc("POST /api/notes/{id}/upload", private(fileHandler.Upload))
	mux.HandleFunc("GET /api/notes/{id}/files/{fileID}", private(fileHandler.GetFile))

	// Flashcards and decks
	mux.HandleFunc("GET /api/notes/{id}/flashcards", private(flashcardHandler.GetFlashcards))
	mux.HandleFunc("PUT /api/notes/{id}/flashcards", private(flashcardHandler.PutFlashcards))
	mux.HandleFunc("GET /api/decks", private(flashcardHandler.ListDecks))
	mux.HandleFunc("GET /api/decks/{id}", private(flashcardHandler.GetDeck))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("atlas API v1"))
	})

	return mux
}
