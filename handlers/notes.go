// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/markdown"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/models"
)

// NoteHandler creates notes and serves note details, summaries and OCR text.
// Summaries and OCR text are produced elsewhere and only stored here.
type NoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewNoteHandler(db *sql.DB, cfg cliparse.Config) *NoteHandler {
	return &NoteHandler{db: db, cfg: cfg}
}

// CreateNote handles POST /api/notes
// Without notebook_id the note lands in the tablet inbox.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := r.Context()
	userID := currentUserID(r)
	now := timestamp()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	notebookID := strings.TrimSpace(req.NotebookID)
	if notebookID != "" {
		var exists string
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM notebook WHERE id = $1 AND user_id = $2
		`, notebookID, userID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Notebook not found")
			return
		}
		if err != nil {
			slog.Error("failed to query notebook", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	} else {
		inbox, err := ensureInbox(ctx, tx, userID, models.InboxTablet, now)
		if err != nil {
			slog.Error("failed to ensure inbox", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		notebookID = inbox.ID
	}

	title := orDefault(req.Title, models.DefaultNoteTitle)
	noteID, err := insertNote(ctx, tx, notebookID, title, orDefault(req.Device, models.DefaultDevice), now)
	if err != nil {
		slog.Error("failed to insert note", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create note")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit note", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	slog.Info("note created", "note_id", noteID, "notebook_id", notebookID)
	middleware.JSONResponse(w, http.StatusCreated, models.CreateNoteResponse{ID: noteID, Title: title})
}

// CreateDeviceNote handles POST /api/device/notes
// The note goes to the inbox for the device type.
func (h *NoteHandler) CreateDeviceNote(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceNoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	deviceType := strings.TrimSpace(req.DeviceType)
	if deviceType == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Device type is required")
		return
	}

	ctx := r.Context()
	now := timestamp()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	inbox, err := ensureInbox(ctx, tx, currentUserID(r), deviceType, now)
	if errors.Is(err, errUnsupportedInbox) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unsupported inbox type")
		return
	}
	if err != nil {
		slog.Error("failed to ensure inbox", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	noteID, err := insertNote(ctx, tx, inbox.ID, orDefault(req.Title, models.DefaultNoteTitle), deviceType, now)
	if err != nil {
		slog.Error("failed to insert note", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create note")
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit note", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	slog.Info("device note created", "note_id", noteID, "device_type", deviceType, "device_id", req.DeviceID)
	middleware.JSONResponse(w, http.StatusCreated, models.DeviceNoteResponse{NoteID: noteID, NotebookID: inbox.ID})
}

// GetNote handles GET /api/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	ctx := r.Context()

	var (
		note                        models.NoteDetail
		summary, ocrText, ocrEngine sql.NullString
		ocrConfidence               sql.NullFloat64
		ocrUpdatedAt                sql.NullTime
		notebookID, notebookName    string
		subjectID, subjectName      sql.NullString
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT n.id, n.title, n.device, n.summary, n.ocr_text, n.ocr_engine, n.ocr_confidence,
		       n.ocr_updated_at, n.created_at, n.updated_at, nb.id, nb.name, s.id, s.name
		FROM note n
		JOIN notebook nb ON nb.id = n.notebook_id
		LEFT JOIN subject s ON s.id = nb.subject_id
		WHERE n.id = $1 AND nb.user_id = $2
	`, noteID, currentUserID(r)).Scan(
		&note.ID, &note.Title, &note.Device, &summary, &ocrText, &ocrEngine, &ocrConfidence,
		&ocrUpdatedAt, &note.CreatedAt, &note.UpdatedAt, &notebookID, &notebookName, &subjectID, &subjectName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		slog.Error("failed to query note", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	note.Summary = nullableString(summary)
	if note.Summary != nil {
		note.SummaryHTML = markdown.ToHTML(*note.Summary)
	}
	note.OCRText = nullableString(ocrText)
	note.OCREngine = nullableString(ocrEngine)
	if ocrConfidence.Valid {
		note.OCRConfidence = &ocrConfidence.Float64
	}
	if ocrUpdatedAt.Valid {
		note.OCRUpdatedAt = &ocrUpdatedAt.Time
	}
	note.Notebook = models.Ref{ID: &notebookID, Name: &notebookName}
	note.Subject = models.Ref{ID: nullableString(subjectID), Name: nullableString(subjectName)}

	if note.Cards, err = listCards(ctx, h.db, noteID); err != nil {
		slog.Error("failed to list flashcards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if note.Files, err = listFiles(ctx, h.db, noteID); err != nil {
		slog.Error("failed to list files", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	err = h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM note_capture WHERE note_id = $1`, noteID).Scan(&note.CaptureCount)
	if err != nil {
		slog.Error("failed to count captures", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, note)
}

// PutSummary handles PUT /api/notes/{id}/summary
// An empty summary clears it.
func (h *NoteHandler) PutSummary(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")

	var req models.SummaryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !requireNote(w, r, h.db, noteID) {
		return
	}

	now := timestamp()
	err := h.updateNote(r.Context(), noteID, now, `UPDATE note SET summary = $1 WHERE id = $2`,
		nullString(strings.TrimSpace(req.Summary)), noteID)
	if err != nil {
		slog.Error("failed to store summary", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store summary")
		return
	}

	slog.Info("summary stored", "note_id", noteID, "length", len(req.Summary))
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// PutOCR handles PUT /api/notes/{id}/ocr
func (h *NoteHandler) PutOCR(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")

	var req models.OCRRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if c := req.Confidence; c != nil && (math.IsNaN(*c) || *c < 0 || *c > 1) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ocr_confidence must be between 0 and 1")
		return
	}
	if !requireNote(w, r, h.db, noteID) {
		return
	}

	now := timestamp()
	err := h.updateNote(r.Context(), noteID, now, `
		UPDATE note SET ocr_text = $1, ocr_engine = $2, ocr_confidence = $3, ocr_updated_at = $4
		WHERE id = $5
	`, strings.TrimSpace(req.Text), nullString(strings.TrimSpace(req.Engine)), req.Confidence, now, noteID)
	if err != nil {
		slog.Error("failed to store OCR text", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store OCR text")
		return
	}

	slog.Info("OCR text stored", "note_id", noteID, "engine", req.Engine)
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// GetOCR handles GET /api/notes/{id}/ocr
func (h *NoteHandler) GetOCR(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")

	var (
		text, engine sql.NullString
		confidence   sql.NullFloat64
		updatedAt    sql.NullTime
	)
	err := h.db.QueryRowContext(r.Context(), `
		SELECT n.ocr_text, n.ocr_engine, n.ocr_confidence, n.ocr_updated_at
		FROM note n
		JOIN notebook nb ON nb.id = n.notebook_id
		WHERE n.id = $1 AND nb.user_id = $2
	`, noteID, currentUserID(r)).Scan(&text, &engine, &confidence, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		slog.Error("failed to query note OCR", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.OCRResponse{
		NoteID:    noteID,
		OCRText:   text.String,
		OCRHTML:   markdown.ToHTML(text.String),
		OCREngine: nullableString(engine),
	}
	if confidence.Valid {
		resp.OCRConfidence = &confidence.Float64
	}
	if updatedAt.Valid {
		resp.OCRUpdatedAt = &updatedAt.Time
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// updateNote runs query and bumps the note's timestamps in one transaction
func (h *NoteHandler) updateNote(ctx context.Context, noteID string, at time.Time, query string, args ...any) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if err := touchNote(ctx, tx, noteID, at); err != nil {
		return err
	}
	return tx.Commit()
}

func insertNote(ctx context.Context, q querier, notebookID, title, device string, at time.Time) (string, error) {
	noteID, err := newID()
	if err != nil {
		return "", err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO note (id, notebook_id, title, device, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, noteID, notebookID, title, device, at)
	if err != nil {
		return "", err
	}
	_, err = q.ExecContext(ctx, `UPDATE notebook SET updated_at = $1 WHERE id = $2`, at, notebookID)
	if err != nil {
		return "", err
	}
	return noteID, nil
}

func listFiles(ctx context.Context, q querier, noteID string) ([]models.NoteFile, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, original_filename, content_type, size_bytes, created_at
		FROM note_file
		WHERE note_id = $1
		ORDER BY created_at, id
	`, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []models.NoteFile{}
	for rows.Next() {
		var f models.NoteFile
		if err := rows.Scan(&f.ID, &f.OriginalFilename, &f.ContentType, &f.SizeBytes, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.URL = fileURL(noteID, f.ID)
		files = append(files, f)
	}
	return files, rows.Err()
}

func fileURL(noteID, fileID string) string {
	return "/api/notes/" + noteID + "/files/" + fileID
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
