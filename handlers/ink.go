// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/ink"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/models"
)

// maxRasterSide bounds ?max= on PNG renders.
const maxRasterSide = 4096

// InkHandler stores stroke captures and renders a note's ink.
type InkHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	cache *ink.Cache
}

func NewInkHandler(db *sql.DB, cfg cliparse.Config, cache *ink.Cache) *InkHandler {
	if cache == nil {
		cache = ink.NewCache(cfg.RenderCacheSize)
	}
	return &InkHandler{db: db, cfg: cfg, cache: cache}
}

// AddStrokes handles POST /api/notes/{id}/strokes
// Each call appends one capture; seq gives the capture order.
func (h *InkHandler) AddStrokes(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")

	var req models.StrokesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Strokes == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "strokes is required")
		return
	}
	if !requireNote(w, r, h.db, noteID) {
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		slog.Error("failed to encode capture", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid strokes")
		return
	}

	captureID, err := newID()
	if err != nil {
		slog.Error("failed to generate capture ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store strokes")
		return
	}

	seq, err := h.appendCapture(r.Context(), noteID, captureID, payload)
	if err != nil {
		slog.Error("failed to store capture", "error", err, "note_id", noteID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store strokes")
		return
	}

	slog.Info("capture stored", "note_id", noteID, "capture_id", captureID, "seq", seq, "strokes", len(req.Strokes))
	middleware.JSONResponse(w, http.StatusCreated, models.AddCaptureResponse{ID: captureID, Seq: seq})
}

func (h *InkHandler) appendCapture(ctx context.Context, noteID, captureID string, payload []byte) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Touching the note first row-locks it, so concurrent appends to the
	// same note serialize before reading MAX(seq).
	now := timestamp()
	if err := touchNote(ctx, tx, noteID, now); err != nil {
		return 0, err
	}

	var seq int64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM note_capture WHERE note_id = $1
	`, noteID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to read capture seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO note_capture (id, note_id, seq, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, captureID, noteID, seq, string(payload), now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert capture: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit capture: %w", err)
	}
	return seq, nil
}

// ListStrokes handles GET /api/notes/{id}/strokes
// Returns the capture batch in capture order.
func (h *InkHandler) ListStrokes(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	if !requireNote(w, r, h.db, noteID) {
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, note_id, seq, payload, created_at
		FROM note_capture
		WHERE note_id = $1
		ORDER BY seq
	`, noteID)
	if err != nil {
		slog.Error("failed to list captures", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	captures := []models.Capture{}
	for rows.Next() {
		var c models.Capture
		var payload string
		if err := rows.Scan(&c.ID, &c.NoteID, &c.Seq, &payload, &c.CreatedAt); err != nil {
			slog.Error("failed to scan capture", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if json.Valid([]byte(payload)) {
			c.Payload = json.RawMessage(payload)
		} else {
			c.Payload = payload
		}
		captures = append(captures, c)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate captures", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, captures)
}

// GetInk handles GET /api/notes/{id}/ink
func (h *InkHandler) GetInk(w http.ResponseWriter, r *http.Request) {
	d, ok := h.drawing(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, d)
}

// GetInkSVG handles GET /api/notes/{id}/ink.svg
// A note without ink still gets a valid, empty SVG.
func (h *InkHandler) GetInkSVG(w http.ResponseWriter, r *http.Request) {
	d, ok := h.drawing(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := ink.WriteSVG(&buf, d); err != nil {
		slog.Error("failed to write SVG", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render ink")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "private, no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetInkPNG handles GET /api/notes/{id}/ink.png?max=N
func (h *InkHandler) GetInkPNG(w http.ResponseWriter, r *http.Request) {
	opts := ink.RasterOptions{}
	if s := r.URL.Query().Get("max"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxRasterSide {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("max must be between 1 and %d", maxRasterSide))
			return
		}
		opts.MaxSize = n
	}

	d, ok := h.drawing(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := ink.RasterizePNG(&buf, d, opts)
	if errors.Is(err, ink.ErrNoGeometry) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No stroke data available to render")
		return
	}
	if err != nil {
		slog.Error("failed to rasterize ink", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render ink")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// drawing loads the note's normalized ink through the render cache. The
// key is the note plus its newest capture, so any append changes it.
func (h *InkHandler) drawing(w http.ResponseWriter, r *http.Request) (ink.Drawing, bool) {
	noteID := r.PathValue("id")
	if !requireNote(w, r, h.db, noteID) {
		return ink.Drawing{}, false
	}
	ctx := r.Context()

	var count, lastSeq int64
	err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(seq), 0) FROM note_capture WHERE note_id = $1
	`, noteID).Scan(&count, &lastSeq)
	if err != nil {
		slog.Error("failed to read capture batch identity", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return ink.Drawing{}, false
	}

	d, err := h.cachedDrawing(ctx, noteID, count, lastSeq)
	if err != nil {
		slog.Error("failed to load captures", "error", err, "note_id", noteID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return ink.Drawing{}, false
	}
	return d, true
}

// cachedDrawing returns the drawing for the batch identified by count and
// lastSeq. The load is shared by every concurrent caller for the batch, so
// it ignores cancellation of whichever request started it.
func (h *InkHandler) cachedDrawing(ctx context.Context, noteID string, count, lastSeq int64) (ink.Drawing, error) {
	loadCtx := context.WithoutCancel(ctx)
	key := fmt.Sprintf("%s:%d:%d", noteID, count, lastSeq)
	return h.cache.Get(key, func() ([]ink.Capture, error) {
		return loadCaptures(loadCtx, h.db, noteID, lastSeq)
	})
}

// loadCaptures reads captures up to and including maxSeq in capture order.
// Payloads that no longer parse are skipped like any other malformed ink.
func loadCaptures(ctx context.Context, q querier, noteID string, maxSeq int64) ([]ink.Capture, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, payload FROM note_capture
		WHERE note_id = $1 AND seq <= $2
		ORDER BY seq
	`, noteID, maxSeq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	captures := []ink.Capture{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		v, err := ink.DecodePayload([]byte(payload))
		if err != nil {
			slog.Warn("skipping unreadable capture", "capture_id", id, "error", err)
			continue
		}
		captures = append(captures, ink.Capture{Payload: v})
	}
	return captures, rows.Err()
}
