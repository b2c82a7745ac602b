// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/atlas/auth"
	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/db"
	"github.com/danielhkuo/atlas/models"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every user made by CreateTestUser
const TestPassword = "correct-horse"

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

// SetupTestDB creates a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "atlas.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Port:            3318,
		DatabaseType:    db.TypeSQLite,
		JWTSecret:       "test-secret",
		JWTExpiry:       time.Hour,
		StorageDir:      t.TempDir(),
		RenderCacheSize: 16,
	}
}

// TestUser is a user row plus a valid access token for it
type TestUser struct {
	ID    string
	Email string
	Token string
}

// AuthHeader returns the Authorization header for MakeRequest
func (u TestUser) AuthHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + u.Token}
}

// CreateTestUser inserts a user with TestPassword and issues a token
func CreateTestUser(t *testing.T, db *sql.DB, cfg cliparse.Config, email string) TestUser {
	t.Helper()

	userID, _ := auth.GenerateID(16)
	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO app_user (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, userID, email, hash, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err := auth.IssueToken(cfg.JWTSecret, userID, email, cfg.JWTExpiry, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return TestUser{ID: userID, Email: email, Token: token}
}

// CreateTestSubject inserts a subject and returns its ID
func CreateTestSubject(t *testing.T, db *sql.DB, userID, name string) string {
	t.Helper()

	subjectID, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO subject (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, subjectID, userID, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test subject: %v", err)
	}
	return subjectID
}

// CreateTestNotebook inserts a notebook under subjectID and returns its ID
func CreateTestNotebook(t *testing.T, db *sql.DB, userID, subjectID, name string) string {
	t.Helper()

	notebookID, _ := auth.GenerateID(16)
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO notebook (id, user_id, subject_id, name, color, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, notebookID, userID, subjectID, name, models.DefaultNotebookColor, models.DefaultNotebookIcon, now)
	if err != nil {
		t.Fatalf("Failed to create test notebook: %v", err)
	}
	return notebookID
}

// CreateTestNote inserts a note and returns its ID. updatedAt orders notes
// in listings.
func CreateTestNote(t *testing.T, db *sql.DB, notebookID, title string, updatedAt time.Time) string {
	t.Helper()

	noteID, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO note (id, notebook_id, title, device, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, noteID, notebookID, title, models.DefaultDevice, updatedAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create test note: %v", err)
	}
	return noteID
}

// CreateTestNoteFor makes a subject, notebook and note for the user
func CreateTestNoteFor(t *testing.T, db *sql.DB, userID string) (notebookID, noteID string) {
	t.Helper()

	subjectID := CreateTestSubject(t, db, userID, "Biology")
	notebookID = CreateTestNotebook(t, db, userID, subjectID, "Cells")
	noteID = CreateTestNote(t, db, notebookID, "Mitosis", time.Now())
	return notebookID, noteID
}

// AddTestCapture stores payload verbatim as the note's next capture
func AddTestCapture(t *testing.T, db *sql.DB, noteID, payload string) {
	t.Helper()

	captureID, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO note_capture (id, note_id, seq, payload, created_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(seq), 0) + 1 FROM note_capture WHERE note_id = $2), $3, $4)
	`, captureID, noteID, payload, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test capture: %v", err)
	}
}

// AddTestCard appends a flashcard to a note
func AddTestCard(t *testing.T, db *sql.DB, noteID string, position int, question, answer string) {
	t.Helper()

	cardID, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO flashcard (id, note_id, position, question, answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, cardID, noteID, position, question, answer, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test card: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
