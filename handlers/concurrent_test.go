// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/atlas/models"
	"github.com/danielhkuo/atlas/testutil"
)

// TestConcurrentCaptureAppends verifies that simultaneous appends to one
// note get distinct, gapless sequence numbers
func TestConcurrentCaptureAppends(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewInkHandler(db, cfg, nil)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")
	_, noteID := testutil.CreateTestNoteFor(t, db, user.ID)

	numWriters := 12
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			body := json.RawMessage(fmt.Sprintf(`{"strokes":[{"points":[[%d,0],[%d,10]]}]}`, idx, idx))
			w := call(handler.AddStrokes, user, "POST", "/api/notes/"+noteID+"/strokes", body, "id", noteID)
			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(successCount.Load()) != numWriters {
		t.Fatalf("Expected %d successful appends, got %d", numWriters, successCount.Load())
	}

	var count, minSeq, maxSeq, distinct int
	err := db.QueryRow(`
		SELECT COUNT(*), MIN(seq), MAX(seq), COUNT(DISTINCT seq) FROM note_capture WHERE note_id = $1
	`, noteID).Scan(&count, &minSeq, &maxSeq, &distinct)
	if err != nil {
		t.Fatalf("Failed to read captures: %v", err)
	}
	if count != numWriters || distinct != numWriters || minSeq != 1 || maxSeq != numWriters {
		t.Errorf("Expected seq 1..%d, got count=%d distinct=%d min=%d max=%d", numWriters, count, distinct, minSeq, maxSeq)
	}
}

// TestConcurrentSignups verifies that racing signups for one email create
// exactly one account
func TestConcurrentSignups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewAuthHandler(db, cfg)

	numAttempts := 5
	var created, rejected atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := call(handler.Signup, testutil.TestUser{}, "POST", "/api/auth/signup",
				models.AuthRequest{Email: "race@example.com", Password: "race-condition"})
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusBadRequest, http.StatusInternalServerError:
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 signup to succeed, got %d", created.Load())
	}
	if created.Load()+rejected.Load() != int32(numAttempts) {
		t.Errorf("Unexpected responses: %d created, %d rejected", created.Load(), rejected.Load())
	}

	var users int
	db.QueryRow(`SELECT COUNT(*) FROM app_user WHERE email = $1`, "race@example.com").Scan(&users)
	if users != 1 {
		t.Errorf("Expected 1 user row, got %d", users)
	}
}

// TestConcurrentInboxCreation verifies that racing device notes share one
// inbox notebook
func TestConcurrentInboxCreation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewNoteHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := call(handler.CreateDeviceNote, user, "POST", "/api/device/notes",
				models.DeviceNoteRequest{DeviceType: models.InboxTablet})
			if w.Code != http.StatusCreated {
				t.Errorf("Create device note failed: %d - %s", w.Code, w.Body.String())
			}
		}()
	}
	wg.Wait()

	var inboxes int
	db.QueryRow(`SELECT COUNT(*) FROM notebook WHERE user_id = $1 AND is_inbox = $2`, user.ID, true).Scan(&inboxes)
	if inboxes != 1 {
		t.Errorf("Expected 1 inbox notebook, got %d", inboxes)
	}
}
