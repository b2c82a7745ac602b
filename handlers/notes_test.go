// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/danielhkuo/atlas/models"
	"github.com/danielhkuo/atlas/testutil"
)

func TestCreateNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewNoteHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")
	other := testutil.CreateTestUser(t, db, cfg, "grace@example.com")
	notebookID, _ := testutil.CreateTestNoteFor(t, db, user.ID)

	t.Run("into a notebook", func(t *testing.T) {
		w := call(handler.CreateNote, user, "POST", "/api/notes", models.CreateNoteRequest{Title: "Krebs cycle", NotebookID: notebookID})
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateNoteResponse
		testutil.AssertJSON(t, w, &resp)
		var got string
		db.QueryRow(`SELECT notebook_id FROM note WHERE id = $1`, resp.ID).Scan(&got)
		if got != notebookID {
			t.Errorf("Expected note in %s, got %s", notebookID, got)
		}
	})

	t.Run("defaults to the tablet inbox", func(t *testing.T) {
		w := call(handler.CreateNote, user, "POST", "/api/notes", models.CreateNoteRequest{})
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateNoteResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Title != models.DefaultNoteTitle {
			t.Errorf("Expected default title, got %q", resp.Title)
		}

		var isInbox bool
		var device string
		db.QueryRow(`
			SELECT nb.is_inbox, n.device FROM note n JOIN notebook nb ON nb.id = n.notebook_id WHERE n.id = $1
		`, resp.ID).Scan(&isInbox, &device)
		if !isInbox || device != models.DefaultDevice {
			t.Errorf("Expected note in inbox with device %q, got inbox=%v device=%q", models.DefaultDevice, isInbox, device)
		}
	})

	t.Run("foreign notebook", func(t *testing.T) {
		w := call(handler.CreateNote, other, "POST", "/api/notes", models.CreateNoteRequest{NotebookID: notebookID})
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestCreateDeviceNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewNoteHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")

	tests := []struct {
		name           string
		request        models.DeviceNoteRequest
		expectedStatus int
	}{
		{"tablet", models.DeviceNoteRequest{Title: "Lecture 4", DeviceType: "tablet", DeviceID: "rm-1"}, http.StatusCreated},
		{"missing device type", models.DeviceNoteRequest{Title: "Lecture 4"}, http.StatusBadRequest},
		{"unsupported device type", models.DeviceNoteRequest{DeviceType: "watch"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(handler.CreateDeviceNote, user, "POST", "/api/device/notes", tt.request)
			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}
			var resp models.DeviceNoteResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.NoteID == "" || resp.NotebookID == "" {
				t.Errorf("Expected note and notebook IDs, got %+v", resp)
			}
		})
	}
}

func TestGetNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewNoteHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")
	other := testutil.CreateTestUser(t, db, cfg, "grace@example.com")
	_, noteID := testutil.CreateTestNoteFor(t, db, user.ID)
	testutil.AddTestCapture(t, db, noteID, `{"strokes":[{"points":[[0,0],[1,1]]}]}`)
	testutil.AddTestCard(t, db, noteID, 0, "What is mitosis?", "Cell division")

	w := call(handler.PutSummary, user, "PUT", "/api/notes/"+noteID+"/summary",
		models.SummaryRequest{Summary: "# Mitosis\n\n- **Prophase** first"}, "id", noteID)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = call(handler.GetNote, user, "GET", "/api/notes/"+noteID, nil, "id", noteID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var note models.NoteDetail
	testutil.AssertJSON(t, w, &note)
	if note.Title != "Mitosis" {
		t.Errorf("Expected title Mitosis, got %q", note.Title)
	}
	if note.Summary == nil || !strings.Contains(note.SummaryHTML, "<strong>Prophase</strong>") {
		t.Errorf("Expected rendered summary, got %q", note.SummaryHTML)
	}
	if note.Subject.Name == nil || *note.Subject.Name != "Biology" {
		t.Errorf("Expected subject Biology, got %+v", note.Subject)
	}
	if note.Notebook.Name == nil || *note.Notebook.Name != "Cells" {
		t.Errorf("Expected notebook Cells, got %+v", note.Notebook)
	}
	if note.CaptureCount != 1 || len(note.Cards) != 1 || len(note.Files) != 0 {
		t.Errorf("Unexpected counts: captures=%d cards=%d files=%d", note.CaptureCount, len(note.Cards), len(note.Files))
	}
	if note.OCRText != nil {
		t.Errorf("Expected no OCR text, got %q", *note.OCRText)
	}

	w = call(handler.GetNote, other, "GET", "/api/notes/"+noteID, nil, "id", noteID)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestPutSummary_EmptyClears(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewNoteHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")
	_, noteID := testutil.CreateTestNoteFor(t, db, user.ID)

	call(handler.PutSummary, user, "PUT", "/", models.SummaryRequest{Summary: "something"}, "id", noteID)
	w := call(handler.PutSummary, user, "PUT", "/", models.SummaryRequest{Summary: "  "}, "id", noteID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var valid bool
	db.QueryRow(`SELECT summary IS NOT NULL FROM note WHERE id = $1`, noteID).Scan(&valid)
	if valid {
		t.Error("Expected blank summary to clear the column")
	}
}

func TestOCR(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewNoteHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")
	_, noteID := testutil.CreateTestNoteFor(t, db, user.ID)

	bad := 1.5
	w := call(handler.PutOCR, user, "PUT", "/", models.OCRRequest{Text: "x", Confidence: &bad}, "id", noteID)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = call(handler.PutOCR, user, "PUT", "/", models.OCRRequest{Text: "x"}, "id", "missing")
	testutil.AssertStatus(t, w, http.StatusNotFound)

	confidence := 0.87
	w = call(handler.PutOCR, user, "PUT", "/", models.OCRRequest{
		Text:       "Prophase\nMetaphase",
		Engine:     "tesseract",
		Confidence: &confidence,
	}, "id", noteID)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = call(handler.GetOCR, user, "GET", "/", nil, "id", noteID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.OCRResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.OCRText != "Prophase\nMetaphase" {
		t.Errorf("Unexpected OCR text %q", resp.OCRText)
	}
	if resp.OCREngine == nil || *resp.OCREngine != "tesseract" {
		t.Errorf("Unexpected engine %v", resp.OCREngine)
	}
	if resp.OCRConfidence == nil || *resp.OCRConfidence != confidence {
		t.Errorf("Unexpected confidence %v", resp.OCRConfidence)
	}
	if resp.OCRUpdatedAt == nil {
		t.Error("Expected ocr_updated_at to be set")
	}
	if !strings.Contains(resp.OCRHTML, "Prophase<br") {
		t.Errorf("Expected line breaks in OCR HTML, got %q", resp.OCRHTML)
	}
}
