// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/atlas/models"
	"github.com/danielhkuo/atlas/storage"
	"github.com/danielhkuo/atlas/testutil"
)

func newTestLibraryHandler(t *testing.T) (*LibraryHandler, *storage.Store, testutil.TestUser, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)
	store, err := storage.New(cfg.StorageDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")
	return NewLibraryHandler(db, cfg, store), store, user, func() { db.Close() }
}

func TestCreateAndListSubjects(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	w := call(handler.CreateSubject, user, "POST", "/api/subjects", models.SubjectRequest{Name: "   "})
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	for _, name := range []string{" Biology ", "Chemistry"} {
		w := call(handler.CreateSubject, user, "POST", "/api/subjects", models.SubjectRequest{Name: name})
		testutil.AssertStatus(t, w, http.StatusCreated)
		time.Sleep(2 * time.Millisecond)
	}

	w = call(handler.ListSubjects, user, "GET", "/api/subjects", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubjectsResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Subjects) != 2 {
		t.Fatalf("Expected 2 subjects, got %d", len(resp.Subjects))
	}
	if resp.Subjects[0].Name != "Biology" || resp.Subjects[1].Name != "Chemistry" {
		t.Errorf("Expected trimmed names in creation order, got %+v", resp.Subjects)
	}
}

func TestSubjects_AreScopedToUser(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	other := testutil.CreateTestUser(t, handler.db, handler.cfg, "grace@example.com")
	subjectID := testutil.CreateTestSubject(t, handler.db, other.ID, "Private")

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    interface{}
	}{
		{"rename", handler.UpdateSubject, "PATCH", models.SubjectRequest{Name: "Mine"}},
		{"delete", handler.DeleteSubject, "DELETE", nil},
		{"list notebooks", handler.ListSubjectNotebooks, "GET", nil},
		{"create notebook", handler.CreateNotebook, "POST", models.CreateNotebookRequest{Name: "Sneaky"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(tt.handler, user, tt.method, "/api/subjects/"+subjectID, tt.body, "id", subjectID)
			testutil.AssertStatus(t, w, http.StatusNotFound)
		})
	}
}

func TestUpdateSubject(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	subjectID := testutil.CreateTestSubject(t, handler.db, user.ID, "Bio")
	testutil.CreateTestNotebook(t, handler.db, user.ID, subjectID, "Cells")

	w := call(handler.UpdateSubject, user, "PATCH", "/api/subjects/"+subjectID, models.SubjectRequest{Name: "Biology"}, "id", subjectID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var subject models.Subject
	testutil.AssertJSON(t, w, &subject)
	if subject.Name != "Biology" || subject.NotebookCount != 1 {
		t.Errorf("Unexpected subject %+v", subject)
	}
}

func TestCreateNotebook_Defaults(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	subjectID := testutil.CreateTestSubject(t, handler.db, user.ID, "Biology")

	w := call(handler.CreateNotebook, user, "POST", "/api/subjects/"+subjectID+"/notebooks",
		models.CreateNotebookRequest{Name: "Cells"}, "id", subjectID)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var nb models.Notebook
	testutil.AssertJSON(t, w, &nb)
	if nb.Color != models.DefaultNotebookColor || nb.Icon != models.DefaultNotebookIcon {
		t.Errorf("Expected default color and icon, got %q %q", nb.Color, nb.Icon)
	}

	w = call(handler.CreateNotebook, user, "POST", "/api/subjects/"+subjectID+"/notebooks",
		models.CreateNotebookRequest{Name: "Genetics", Color: "#ff0000", Icon: "Dna"}, "id", subjectID)
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = call(handler.ListSubjectNotebooks, user, "GET", "/api/subjects/"+subjectID+"/notebooks", nil, "id", subjectID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubjectNotebooksResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Subject.Name == nil || *resp.Subject.Name != "Biology" {
		t.Errorf("Expected subject Biology, got %+v", resp.Subject)
	}
	if len(resp.Notebooks) != 2 {
		t.Fatalf("Expected 2 notebooks, got %d", len(resp.Notebooks))
	}
	if resp.Notebooks[1].Color != "#ff0000" || resp.Notebooks[1].Icon != "Dna" {
		t.Errorf("Expected custom color and icon, got %+v", resp.Notebooks[1])
	}
	if resp.Notebooks[0].UpdatedAt == nil {
		t.Error("Expected updated_at on listed notebooks")
	}
}

func TestGetLibrary(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	subjectID := testutil.CreateTestSubject(t, handler.db, user.ID, "Biology")
	notebookID := testutil.CreateTestNotebook(t, handler.db, user.ID, subjectID, "Cells")
	testutil.CreateTestNote(t, handler.db, notebookID, "Mitosis", time.Now())
	testutil.CreateTestNote(t, handler.db, notebookID, "Meiosis", time.Now())

	w := call(handler.GetLibrary, user, "GET", "/api/library", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var lib models.LibraryResponse
	testutil.AssertJSON(t, w, &lib)
	if len(lib.Subjects) != 1 || lib.Subjects[0].NotebookCount != 1 {
		t.Errorf("Unexpected subjects %+v", lib.Subjects)
	}
	if len(lib.Notebooks) != 1 || lib.Notebooks[0].NoteCount != 2 {
		t.Errorf("Unexpected notebooks %+v", lib.Notebooks)
	}
}

func TestGetInbox(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	w := call(handler.GetInbox, user, "GET", "/api/notebooks/inbox", nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = call(handler.GetInbox, user, "GET", "/api/notebooks/inbox?type=phone", nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	var first models.InboxNotebook
	w = call(handler.GetInbox, user, "GET", "/api/notebooks/inbox?type=Tablet", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &first)

	if !first.IsInbox || first.InboxType != models.InboxTablet || first.Name != "Tablet Inbox" {
		t.Errorf("Unexpected inbox %+v", first)
	}

	// Asking again returns the same notebook
	var second models.InboxNotebook
	w = call(handler.GetInbox, user, "GET", "/api/notebooks/inbox?type=tablet", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &second)
	if second.ID != first.ID {
		t.Errorf("Expected inbox %s to be reused, got %s", first.ID, second.ID)
	}

	var subjectName string
	handler.db.QueryRow(`SELECT name FROM subject WHERE id = $1`, first.SubjectID).Scan(&subjectName)
	if subjectName != models.InboxSubjectName {
		t.Errorf("Expected inbox under %q, got %q", models.InboxSubjectName, subjectName)
	}
}

func TestUpdateNotebook_Partial(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	subjectID := testutil.CreateTestSubject(t, handler.db, user.ID, "Biology")
	notebookID := testutil.CreateTestNotebook(t, handler.db, user.ID, subjectID, "Cells")

	icon := "Microscope"
	w := call(handler.UpdateNotebook, user, "PATCH", "/api/notebooks/"+notebookID,
		models.UpdateNotebookRequest{Icon: &icon}, "id", notebookID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var nb models.Notebook
	testutil.AssertJSON(t, w, &nb)
	if nb.Name != "Cells" || nb.Icon != "Microscope" || nb.Color != models.DefaultNotebookColor {
		t.Errorf("Unexpected notebook %+v", nb)
	}

	blank := " "
	w = call(handler.UpdateNotebook, user, "PATCH", "/api/notebooks/"+notebookID,
		models.UpdateNotebookRequest{Name: &blank}, "id", notebookID)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = call(handler.UpdateNotebook, user, "PATCH", "/api/notebooks/missing",
		models.UpdateNotebookRequest{Icon: &icon}, "id", "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestDeleteNotebook_RemovesStoredFiles(t *testing.T) {
	handler, store, user, done := newTestLibraryHandler(t)
	defer done()

	notebookID, noteID := testutil.CreateTestNoteFor(t, handler.db, user.ID)

	stored, size, err := store.Save("scan.txt", strings.NewReader("page one"))
	if err != nil {
		t.Fatalf("Failed to store file: %v", err)
	}
	_, err = handler.db.Exec(`
		INSERT INTO note_file (id, note_id, stored_filename, original_filename, content_type, size_bytes, created_at)
		VALUES ('f1', $1, $2, 'scan.txt', 'text/plain', $3, $4)
	`, noteID, stored, size, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to insert file row: %v", err)
	}

	w := call(handler.DeleteNotebook, user, "DELETE", "/api/notebooks/"+notebookID, nil, "id", notebookID)
	testutil.AssertStatus(t, w, http.StatusOK)

	if _, err := store.Open(stored); err == nil {
		t.Error("Expected stored file to be removed")
	}

	var notes int
	handler.db.QueryRow(`SELECT COUNT(*) FROM note WHERE id = $1`, noteID).Scan(&notes)
	if notes != 0 {
		t.Error("Expected notes to cascade with the notebook")
	}

	w = call(handler.DeleteNotebook, user, "DELETE", "/api/notebooks/"+notebookID, nil, "id", notebookID)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestDeleteSubject_Cascades(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	subjectID := testutil.CreateTestSubject(t, handler.db, user.ID, "Biology")
	notebookID := testutil.CreateTestNotebook(t, handler.db, user.ID, subjectID, "Cells")
	noteID := testutil.CreateTestNote(t, handler.db, notebookID, "Mitosis", time.Now())
	testutil.AddTestCapture(t, handler.db, noteID, `{"strokes":[]}`)

	w := call(handler.DeleteSubject, user, "DELETE", "/api/subjects/"+subjectID, nil, "id", subjectID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var captures int
	handler.db.QueryRow(`SELECT COUNT(*) FROM note_capture WHERE note_id = $1`, noteID).Scan(&captures)
	if captures != 0 {
		t.Errorf("Expected captures to cascade, got %d", captures)
	}
}

func TestListNotebookNotes_NewestFirst(t *testing.T) {
	handler, _, user, done := newTestLibraryHandler(t)
	defer done()

	subjectID := testutil.CreateTestSubject(t, handler.db, user.ID, "Biology")
	notebookID := testutil.CreateTestNotebook(t, handler.db, user.ID, subjectID, "Cells")
	now := time.Now()
	older := testutil.CreateTestNote(t, handler.db, notebookID, "Older", now.Add(-time.Hour))
	newer := testutil.CreateTestNote(t, handler.db, notebookID, "Newer", now)
	testutil.AddTestCard(t, handler.db, older, 0, "Q", "A")
	testutil.AddTestCard(t, handler.db, older, 1, "Q2", "A2")

	w := call(handler.ListNotebookNotes, user, "GET", "/api/notebooks/"+notebookID+"/notes", nil, "id", notebookID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var notes []models.NoteSummary
	testutil.AssertJSON(t, w, &notes)
	if len(notes) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID != newer || notes[1].ID != older {
		t.Errorf("Expected newest first, got %s then %s", notes[0].Title, notes[1].Title)
	}
	if notes[1].FlashcardCount != 2 {
		t.Errorf("Expected 2 flashcards on older note, got %d", notes[1].FlashcardCount)
	}

	w = call(handler.ListNotebookNotes, user, "GET", "/api/notebooks/missing/notes", nil, "id", "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
