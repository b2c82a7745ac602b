// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/markdown"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/models"
)

// FlashcardHandler serves a note's flashcards and the deck views over them.
type FlashcardHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewFlashcardHandler(db *sql.DB, cfg cliparse.Config) *FlashcardHandler {
	return &FlashcardHandler{db: db, cfg: cfg}
}

// GetFlashcards handles GET /api/notes/{id}/flashcards
func (h *FlashcardHandler) GetFlashcards(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	if !requireNote(w, r, h.db, noteID) {
		return
	}

	cards, err := listCards(r.Context(), h.db, noteID)
	if err != nil {
		slog.Error("failed to list flashcards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.FlashcardsResponse{NoteID: noteID, Cards: cards})
}

// PutFlashcards handles PUT /api/notes/{id}/flashcards
// The request replaces the whole card list; order is preserved.
func (h *FlashcardHandler) PutFlashcards(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")

	var req models.FlashcardsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	for i := range req.Cards {
		req.Cards[i].Question = strings.TrimSpace(req.Cards[i].Question)
		req.Cards[i].Answer = strings.TrimSpace(req.Cards[i].Answer)
		if req.Cards[i].Question == "" || req.Cards[i].Answer == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Card %d needs a question and an answer", i+1))
			return
		}
	}
	if !requireNote(w, r, h.db, noteID) {
		return
	}

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	now := timestamp()
	if err := touchNote(ctx, tx, noteID, now); err != nil {
		slog.Error("failed to update note", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flashcard WHERE note_id = $1`, noteID); err != nil {
		slog.Error("failed to clear flashcards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	cards := make([]models.Card, 0, len(req.Cards))
	for i, c := range req.Cards {
		id, err := newID()
		if err != nil {
			slog.Error("failed to generate card ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save flashcards")
			return
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO flashcard (id, note_id, position, question, answer, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, noteID, i, c.Question, c.Answer, now)
		if err != nil {
			slog.Error("failed to insert flashcard", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		cards = append(cards, models.Card{ID: id, Question: c.Question, Answer: c.Answer})
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit flashcards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("flashcards replaced", "note_id", noteID, "count", len(cards))
	middleware.JSONResponse(w, http.StatusOK, models.FlashcardsResponse{NoteID: noteID, Cards: cards})
}

// ListDecks handles GET /api/decks
// A deck is a note with at least one card, newest first.
func (h *FlashcardHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT n.id, n.title, COUNT(f.id), n.created_at
		FROM note n
		JOIN notebook nb ON nb.id = n.notebook_id
		JOIN flashcard f ON f.note_id = n.id
		WHERE nb.user_id = $1
		GROUP BY n.id, n.title, n.created_at
		ORDER BY n.created_at DESC, n.id
	`, currentUserID(r))
	if err != nil {
		slog.Error("failed to list decks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	decks := []models.Deck{}
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.Topic, &d.CardCount, &d.CreatedAt); err != nil {
			slog.Error("failed to scan deck", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate decks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, decks)
}

// GetDeck handles GET /api/decks/{id}
func (h *FlashcardHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	ctx := r.Context()

	var d models.DeckDetail
	var summary sql.NullString
	err := h.db.QueryRowContext(ctx, `
		SELECT n.id, n.title, n.summary, n.created_at
		FROM note n
		JOIN notebook nb ON nb.id = n.notebook_id
		WHERE n.id = $1 AND nb.user_id = $2
	`, noteID, currentUserID(r)).Scan(&d.ID, &d.Topic, &summary, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Deck not found")
		return
	}
	if err != nil {
		slog.Error("failed to query deck", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if d.Cards, err = listCards(ctx, h.db, noteID); err != nil {
		slog.Error("failed to list flashcards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(d.Cards) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Deck not found")
		return
	}

	d.CardCount = len(d.Cards)
	d.Summary = nullableString(summary)
	if d.Summary != nil {
		d.SummaryHTML = markdown.ToHTML(*d.Summary)
	}
	middleware.JSONResponse(w, http.StatusOK, d)
}

func listCards(ctx context.Context, q querier, noteID string) ([]models.Card, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, question, answer FROM flashcard
		WHERE note_id = $1
		ORDER BY position, created_at
	`, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.Question, &c.Answer); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
