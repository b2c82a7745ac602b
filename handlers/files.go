// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/models"
	"github.com/danielhkuo/atlas/storage"
	"github.com/dustin/go-humanize"
)

// MaxUploadSize caps a single uploaded file.
const MaxUploadSize = 50 << 20

// maxThumbSide bounds ?thumb= on file downloads.
const maxThumbSide = 2048

// FileHandler stores and serves files attached to notes.
type FileHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store *storage.Store
}

func NewFileHandler(db *sql.DB, cfg cliparse.Config, store *storage.Store) *FileHandler {
	return &FileHandler{db: db, cfg: cfg, store: store}
}

// Upload handles POST /api/notes/{id}/upload
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	if !requireNote(w, r, h.db, noteID) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	stored, size, err := h.store.Save(header.Filename, file)
	if err != nil {
		slog.Error("failed to store upload", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	f := models.NoteFile{
		OriginalFilename: filepath.Base(header.Filename),
		ContentType:      contentType,
		SizeBytes:        size,
		StoredFilename:   stored,
		CreatedAt:        timestamp(),
	}
	if f.ID, err = newID(); err != nil {
		slog.Error("failed to generate file ID", "error", err)
		h.discard(stored)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		h.discard(stored)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO note_file (id, note_id, stored_filename, original_filename, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID, noteID, f.StoredFilename, f.OriginalFilename, f.ContentType, f.SizeBytes, f.CreatedAt)
	if err == nil {
		err = touchNote(ctx, tx, noteID, f.CreatedAt)
	}
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		slog.Error("failed to record upload", "error", err)
		h.discard(stored)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	f.URL = fileURL(noteID, f.ID)
	slog.Info("file uploaded",
		"note_id", noteID,
		"file_id", f.ID,
		"name", f.OriginalFilename,
		"size", humanize.Bytes(uint64(size)),
	)
	middleware.JSONResponse(w, http.StatusCreated, models.UploadResponse{File: f})
}

func (h *FileHandler) discard(stored string) {
	if err := h.store.Remove(stored); err != nil {
		slog.Warn("failed to remove orphaned upload", "error", err, "file", stored)
	}
}

// GetFile handles GET /api/notes/{id}/files/{fileID}
// ?thumb=N returns a PNG thumbnail no larger than N pixels a side.
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	noteID := r.PathValue("id")
	fileID := r.PathValue("fileID")

	thumb := 0
	if s := r.URL.Query().Get("thumb"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxThumbSide {
			middleware.ErrorResponse(w, http.StatusBadRequest, "thumb must be between 1 and "+strconv.Itoa(maxThumbSide))
			return
		}
		thumb = n
	}

	var f models.NoteFile
	err := h.db.QueryRowContext(r.Context(), `
		SELECT f.id, f.stored_filename, f.original_filename, f.content_type, f.size_bytes, f.created_at
		FROM note_file f
		JOIN note n ON n.id = f.note_id
		JOIN notebook nb ON nb.id = n.notebook_id
		WHERE f.id = $1 AND f.note_id = $2 AND nb.user_id = $3
	`, fileID, noteID, currentUserID(r)).Scan(
		&f.ID, &f.StoredFilename, &f.OriginalFilename, &f.ContentType, &f.SizeBytes, &f.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		slog.Error("failed to query file", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if thumb > 0 {
		h.serveThumbnail(w, f, thumb)
		return
	}

	file, err := h.store.Open(f.StoredFilename)
	if errors.Is(err, storage.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		slog.Error("failed to open stored file", "error", err, "file", f.StoredFilename)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": f.OriginalFilename}))
	http.ServeContent(w, r, f.OriginalFilename, f.CreatedAt, file)
}

func (h *FileHandler) serveThumbnail(w http.ResponseWriter, f models.NoteFile, side int) {
	var buf bytes.Buffer
	err := h.store.Thumbnail(&buf, f.StoredFilename, side)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "File not found")
		return
	case errors.Is(err, storage.ErrNotImage):
		middleware.ErrorResponse(w, http.StatusUnsupportedMediaType, "File is not an image")
		return
	case err != nil:
		slog.Error("failed to build thumbnail", "error", err, "file", f.StoredFilename)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
