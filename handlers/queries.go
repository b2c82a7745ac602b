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
	"time"

	"github.com/danielhkuo/atlas/auth"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/models"
	"github.com/danielhkuo/atlas/storage"
)

var errUnsupportedInbox = errors.New("unsupported inbox type")

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func timestamp() time.Time {
	return time.Now().UTC()
}

// currentUserID is only called behind RequireAuth
func currentUserID(r *http.Request) string {
	id, _ := middleware.UserID(r.Context())
	return id
}

func newID() (string, error) {
	return auth.GenerateID(16)
}

// noteOwned reports whether noteID exists in one of userID's notebooks
func noteOwned(ctx context.Context, q querier, noteID, userID string) (bool, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT n.id
		FROM note n
		JOIN notebook nb ON nb.id = n.notebook_id
		WHERE n.id = $1 AND nb.user_id = $2
	`, noteID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// requireNote writes the 404/500 response and returns false when the note
// is not one of the caller's
func requireNote(w http.ResponseWriter, r *http.Request, db *sql.DB, noteID string) bool {
	ok, err := noteOwned(r.Context(), db, noteID, currentUserID(r))
	if err != nil {
		slog.Error("failed to query note", "error", err, "note_id", noteID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Note not found")
		return false
	}
	return true
}

// touchNote bumps the updated_at of a note and its notebook
func touchNote(ctx context.Context, q querier, noteID string, at time.Time) error {
	if _, err := q.ExecContext(ctx, `UPDATE note SET updated_at = $1 WHERE id = $2`, at, noteID); err != nil {
		return fmt.Errorf("failed to touch note: %w", err)
	}
	_, err := q.ExecContext(ctx, `
		UPDATE notebook SET updated_at = $1
		WHERE id = (SELECT notebook_id FROM note WHERE id = $2)
	`, at, noteID)
	if err != nil {
		return fmt.Errorf("failed to touch notebook: %w", err)
	}
	return nil
}

func findOrCreateSubject(ctx context.Context, q querier, userID, name string, at time.Time) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM subject WHERE user_id = $1 AND name = $2
		ORDER BY created_at, id LIMIT 1
	`, userID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to query subject: %w", err)
	}

	if id, err = newID(); err != nil {
		return "", err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO subject (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, userID, name, at)
	if err != nil {
		return "", fmt.Errorf("failed to insert subject: %w", err)
	}
	return id, nil
}

// findNotebook returns the ID of the named notebook in a subject, or "".
func findNotebook(ctx context.Context, q querier, userID, subjectID, name string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM notebook WHERE user_id = $1 AND subject_id = $2 AND name = $3
		ORDER BY created_at, id LIMIT 1
	`, userID, subjectID, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query notebook: %w", err)
	}
	return id, nil
}

func insertNotebook(ctx context.Context, q querier, nb models.InboxNotebook, userID string, at time.Time) error {
	var inboxType *string
	if nb.IsInbox {
		inboxType = &nb.InboxType
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO notebook (id, user_id, subject_id, name, color, icon, is_inbox, inbox_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`, nb.ID, userID, nb.SubjectID, nb.Name, nb.Color, nb.Icon, nb.IsInbox, inboxType, at)
	if err != nil {
		return fmt.Errorf("failed to insert notebook: %w", err)
	}
	return nil
}

// ensureUserDefaults gives the user an "Unsorted" subject holding an
// "Unsorted" notebook
func ensureUserDefaults(ctx context.Context, q querier, userID string, at time.Time) error {
	subjectID, err := findOrCreateSubject(ctx, q, userID, models.UnsortedName, at)
	if err != nil {
		return err
	}
	existing, err := findNotebook(ctx, q, userID, subjectID, models.UnsortedName)
	if err != nil || existing != "" {
		return err
	}

	id, err := newID()
	if err != nil {
		return err
	}
	return insertNotebook(ctx, q, models.InboxNotebook{
		ID:        id,
		Name:      models.UnsortedName,
		Color:     models.DefaultNotebookColor,
		Icon:      models.DefaultNotebookIcon,
		SubjectID: subjectID,
	}, userID, at)
}

// ensureInbox finds or creates the user's inbox notebook for inboxType under
// the "Inbox" subject. Unknown types return errUnsupportedInbox.
func ensureInbox(ctx context.Context, q querier, userID, inboxType string, at time.Time) (models.InboxNotebook, error) {
	normalized := strings.ToLower(strings.TrimSpace(inboxType))
	name, ok := models.InboxNotebookNames[normalized]
	if !ok {
		return models.InboxNotebook{}, errUnsupportedInbox
	}

	subjectID, err := findOrCreateSubject(ctx, q, userID, models.InboxSubjectName, at)
	if err != nil {
		return models.InboxNotebook{}, err
	}

	nb := models.InboxNotebook{
		Name:      name,
		IsInbox:   true,
		InboxType: normalized,
		SubjectID: subjectID,
	}
	err = q.QueryRowContext(ctx, `
		SELECT id, color, icon FROM notebook
		WHERE user_id = $1 AND subject_id = $2 AND name = $3
		ORDER BY created_at, id LIMIT 1
	`, userID, subjectID, name).Scan(&nb.ID, &nb.Color, &nb.Icon)

	if err == nil {
		// Older rows may predate the inbox flags
		_, err = q.ExecContext(ctx, `
			UPDATE notebook SET is_inbox = $1, inbox_type = $2 WHERE id = $3
		`, true, normalized, nb.ID)
		if err != nil {
			return models.InboxNotebook{}, fmt.Errorf("failed to flag inbox notebook: %w", err)
		}
		return nb, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.InboxNotebook{}, fmt.Errorf("failed to query inbox notebook: %w", err)
	}

	if nb.ID, err = newID(); err != nil {
		return models.InboxNotebook{}, err
	}
	nb.Color = models.DefaultNotebookColor
	nb.Icon = models.DefaultNotebookIcon
	if err := insertNotebook(ctx, q, nb, userID, at); err != nil {
		return models.InboxNotebook{}, err
	}
	return nb, nil
}

// storedFiles lists the stored names of files under notes matched by where,
// which filters on the note alias n and notebook alias nb
func storedFiles(ctx context.Context, q querier, where string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT f.stored_filename
		FROM note_file f
		JOIN note n ON n.id = f.note_id
		JOIN notebook nb ON nb.id = n.notebook_id
		WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stored files: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan stored file: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// removeStoredFiles deletes files whose rows are already gone. Failures
// only leave orphans on disk, so they are logged.
func removeStoredFiles(store *storage.Store, names []string) {
	if store == nil {
		return
	}
	for _, name := range names {
		if err := store.Remove(name); err != nil {
			slog.Warn("failed to remove stored file", "error", err, "file", name)
		}
	}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
