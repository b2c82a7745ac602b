// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/models"
	"github.com/danielhkuo/atlas/storage"
)

// LibraryHandler serves subjects, notebooks and notebook listings.
type LibraryHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store *storage.Store
}

func NewLibraryHandler(db *sql.DB, cfg cliparse.Config, store *storage.Store) *LibraryHandler {
	return &LibraryHandler{db: db, cfg: cfg, store: store}
}

// GetLibrary handles GET /api/library
func (h *LibraryHandler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	subjects, err := listSubjects(r.Context(), h.db, userID)
	if err != nil {
		slog.Error("failed to list subjects", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT nb.id, nb.name, nb.color, nb.icon, COUNT(n.id)
		FROM notebook nb
		LEFT JOIN note n ON n.notebook_id = nb.id
		WHERE nb.user_id = $1
		GROUP BY nb.id, nb.name, nb.color, nb.icon, nb.created_at
		ORDER BY nb.created_at DESC, nb.id
	`, userID)
	if err != nil {
		slog.Error("failed to list notebooks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	notebooks := []models.Notebook{}
	for rows.Next() {
		var nb models.Notebook
		if err := rows.Scan(&nb.ID, &nb.Name, &nb.Color, &nb.Icon, &nb.NoteCount); err != nil {
			slog.Error("failed to scan notebook", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		notebooks = append(notebooks, nb)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate notebooks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LibraryResponse{
		Subjects:  subjects,
		Notebooks: notebooks,
	})
}

// ListSubjects handles GET /api/subjects
func (h *LibraryHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := listSubjects(r.Context(), h.db, currentUserID(r))
	if err != nil {
		slog.Error("failed to list subjects", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SubjectsResponse{Subjects: subjects})
}

// CreateSubject handles POST /api/subjects
func (h *LibraryHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req models.SubjectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}

	subjectID, err := newID()
	if err != nil {
		slog.Error("failed to generate subject ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create subject")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO subject (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, subjectID, currentUserID(r), name, timestamp())
	if err != nil {
		slog.Error("failed to insert subject", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create subject")
		return
	}

	slog.Info("subject created", "subject_id", subjectID)
	middleware.JSONResponse(w, http.StatusCreated, models.Subject{ID: subjectID, Name: name})
}

// UpdateSubject handles PATCH /api/subjects/{id}
func (h *LibraryHandler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("id")

	var req models.SubjectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `
		UPDATE subject SET name = $1 WHERE id = $2 AND user_id = $3
	`, name, subjectID, currentUserID(r))
	if err != nil {
		slog.Error("failed to update subject", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Subject not found")
		return
	}

	subject := models.Subject{ID: subjectID, Name: name}
	err = h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM notebook WHERE subject_id = $1
	`, subjectID).Scan(&subject.NotebookCount)
	if err != nil {
		slog.Error("failed to count notebooks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, subject)
}

// DeleteSubject handles DELETE /api/subjects/{id}
// Notebooks, notes and their files go with it.
func (h *LibraryHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("id")
	userID := currentUserID(r)

	files, err := storedFiles(r.Context(), h.db, "nb.subject_id = $1 AND nb.user_id = $2", subjectID, userID)
	if err != nil {
		slog.Error("failed to list subject files", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `DELETE FROM subject WHERE id = $1 AND user_id = $2`, subjectID, userID)
	if err != nil {
		slog.Error("failed to delete subject", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Subject not found")
		return
	}
	removeStoredFiles(h.store, files)

	slog.Info("subject deleted", "subject_id", subjectID, "files", len(files))
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// ListSubjectNotebooks handles GET /api/subjects/{id}/notebooks
func (h *LibraryHandler) ListSubjectNotebooks(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("id")
	userID := currentUserID(r)

	var subjectName string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT name FROM subject WHERE id = $1 AND user_id = $2
	`, subjectID, userID).Scan(&subjectName)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Subject not found")
		return
	}
	if err != nil {
		slog.Error("failed to query subject", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT nb.id, nb.name, nb.color, nb.icon, nb.updated_at, COUNT(n.id)
		FROM notebook nb
		LEFT JOIN note n ON n.notebook_id = nb.id
		WHERE nb.subject_id = $1 AND nb.user_id = $2
		GROUP BY nb.id, nb.name, nb.color, nb.icon, nb.updated_at, nb.created_at
		ORDER BY nb.created_at, nb.id
	`, subjectID, userID)
	if err != nil {
		slog.Error("failed to list notebooks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	notebooks := []models.Notebook{}
	for rows.Next() {
		var nb models.Notebook
		var updatedAt sql.NullTime
		if err := rows.Scan(&nb.ID, &nb.Name, &nb.Color, &nb.Icon, &updatedAt, &nb.NoteCount); err != nil {
			slog.Error("failed to scan notebook", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if updatedAt.Valid {
			nb.UpdatedAt = &updatedAt.Time
		}
		notebooks = append(notebooks, nb)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate notebooks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubjectNotebooksResponse{
		Subject:   models.Ref{ID: &subjectID, Name: &subjectName},
		Notebooks: notebooks,
	})
}

// CreateNotebook handles POST /api/subjects/{id}/notebooks
func (h *LibraryHandler) CreateNotebook(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("id")
	userID := currentUserID(r)

	var req models.CreateNotebookRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var exists string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id FROM subject WHERE id = $1 AND user_id = $2
	`, subjectID, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Subject not found")
		return
	}
	if err != nil {
		slog.Error("failed to query subject", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}

	nb := models.InboxNotebook{
		Name:      name,
		Color:     orDefault(req.Color, models.DefaultNotebookColor),
		Icon:      orDefault(req.Icon, models.DefaultNotebookIcon),
		SubjectID: subjectID,
	}
	if nb.ID, err = newID(); err != nil {
		slog.Error("failed to generate notebook ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create notebook")
		return
	}

	now := timestamp()
	if err := insertNotebook(r.Context(), h.db, nb, userID, now); err != nil {
		slog.Error("failed to insert notebook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create notebook")
		return
	}

	slog.Info("notebook created", "notebook_id", nb.ID, "subject_id", subjectID)
	middleware.JSONResponse(w, http.StatusCreated, models.Notebook{
		ID:        nb.ID,
		Name:      nb.Name,
		Color:     nb.Color,
		Icon:      nb.Icon,
		UpdatedAt: &now,
	})
}

// GetInbox handles GET /api/notebooks/inbox?type=tablet
func (h *LibraryHandler) GetInbox(w http.ResponseWriter, r *http.Request) {
	inboxType := r.URL.Query().Get("type")
	if strings.TrimSpace(inboxType) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "type is required")
		return
	}

	nb, err := ensureInbox(r.Context(), h.db, currentUserID(r), inboxType, timestamp())
	if errors.Is(err, errUnsupportedInbox) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unsupported inbox type")
		return
	}
	if err != nil {
		slog.Error("failed to ensure inbox", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, nb)
}

// UpdateNotebook handles PATCH /api/notebooks/{id}
func (h *LibraryHandler) UpdateNotebook(w http.ResponseWriter, r *http.Request) {
	notebookID := r.PathValue("id")
	userID := currentUserID(r)

	var req models.UpdateNotebookRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var nb models.Notebook
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, name, color, icon FROM notebook WHERE id = $1 AND user_id = $2
	`, notebookID, userID).Scan(&nb.ID, &nb.Name, &nb.Color, &nb.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Notebook not found")
		return
	}
	if err != nil {
		slog.Error("failed to query notebook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Name is required")
			return
		}
		nb.Name = name
	}
	if req.Color != nil {
		nb.Color = *req.Color
	}
	if req.Icon != nil {
		nb.Icon = *req.Icon
	}

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE notebook SET name = $1, color = $2, icon = $3 WHERE id = $4
	`, nb.Name, nb.Color, nb.Icon, nb.ID)
	if err != nil {
		slog.Error("failed to update notebook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	err = h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM note WHERE notebook_id = $1
	`, nb.ID).Scan(&nb.NoteCount)
	if err != nil {
		slog.Error("failed to count notes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, nb)
}

// DeleteNotebook handles DELETE /api/notebooks/{id}
func (h *LibraryHandler) DeleteNotebook(w http.ResponseWriter, r *http.Request) {
	notebookID := r.PathValue("id")
	userID := currentUserID(r)

	files, err := storedFiles(r.Context(), h.db, "nb.id = $1 AND nb.user_id = $2", notebookID, userID)
	if err != nil {
		slog.Error("failed to list notebook files", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `DELETE FROM notebook WHERE id = $1 AND user_id = $2`, notebookID, userID)
	if err != nil {
		slog.Error("failed to delete notebook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Notebook not found")
		return
	}
	removeStoredFiles(h.store, files)

	slog.Info("notebook deleted", "notebook_id", notebookID, "files", len(files))
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// ListNotebookNotes handles GET /api/notebooks/{id}/notes
// Newest first by updated_at.
func (h *LibraryHandler) ListNotebookNotes(w http.ResponseWriter, r *http.Request) {
	notebookID := r.PathValue("id")

	var exists string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id FROM notebook WHERE id = $1 AND user_id = $2
	`, notebookID, currentUserID(r)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Notebook not found")
		return
	}
	if err != nil {
		slog.Error("failed to query notebook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT n.id, n.title, n.updated_at, COUNT(f.id)
		FROM note n
		LEFT JOIN flashcard f ON f.note_id = n.id
		WHERE n.notebook_id = $1
		GROUP BY n.id, n.title, n.updated_at
		ORDER BY n.updated_at DESC, n.id
	`, notebookID)
	if err != nil {
		slog.Error("failed to list notes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	notes := []models.NoteSummary{}
	for rows.Next() {
		var n models.NoteSummary
		if err := rows.Scan(&n.ID, &n.Title, &n.UpdatedAt, &n.FlashcardCount); err != nil {
			slog.Error("failed to scan note", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate notes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, notes)
}

func listSubjects(ctx context.Context, q querier, userID string) ([]models.Subject, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT s.id, s.name, COUNT(nb.id)
		FROM subject s
		LEFT JOIN notebook nb ON nb.subject_id = s.id
		WHERE s.user_id = $1
		GROUP BY s.id, s.name, s.created_at
		ORDER BY s.created_at, s.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.NotebookCount); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
