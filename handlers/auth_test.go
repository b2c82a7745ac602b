// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/atlas/auth"
	"github.com/danielhkuo/atlas/models"
	"github.com/danielhkuo/atlas/testutil"
)

func TestSignup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewAuthHandler(db, cfg)

	tests := []struct {
		name           string
		request        models.AuthRequest
		expectedStatus int
	}{
		{"valid signup", models.AuthRequest{Email: "  Ada@Example.COM ", Password: "lovelace1"}, http.StatusCreated},
		{"duplicate email after normalization", models.AuthRequest{Email: "ada@example.com", Password: "lovelace1"}, http.StatusBadRequest},
		{"missing email", models.AuthRequest{Email: "", Password: "lovelace1"}, http.StatusBadRequest},
		{"email without at sign", models.AuthRequest{Email: "ada", Password: "lovelace1"}, http.StatusBadRequest},
		{"short password", models.AuthRequest{Email: "grace@example.com", Password: "short"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/auth/signup", tt.request, nil)
			w := httptest.NewRecorder()
			handler.Signup(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.AuthResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.User.Email != "ada@example.com" {
				t.Errorf("Expected normalized email, got %q", resp.User.Email)
			}
			if resp.TokenType != models.TokenTypeBearer {
				t.Errorf("Expected token type bearer, got %q", resp.TokenType)
			}
			claims, err := auth.ParseToken(cfg.JWTSecret, resp.AccessToken)
			if err != nil {
				t.Fatalf("Issued token does not parse: %v", err)
			}
			if claims.UserID != resp.User.ID {
				t.Errorf("Token user %q does not match %q", claims.UserID, resp.User.ID)
			}
		})
	}
}

func TestSignup_CreatesUnsortedLibrary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewAuthHandler(db, cfg)

	req := testutil.MakeRequest("POST", "/api/auth/signup", models.AuthRequest{Email: "ada@example.com", Password: "lovelace1"}, nil)
	w := httptest.NewRecorder()
	handler.Signup(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AuthResponse
	testutil.AssertJSON(t, w, &resp)

	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM notebook nb
		JOIN subject s ON s.id = nb.subject_id
		WHERE nb.user_id = $1 AND s.name = $2 AND nb.name = $2
	`, resp.User.ID, models.UnsortedName).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count notebooks: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected one Unsorted notebook, got %d", count)
	}
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewAuthHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")

	tests := []struct {
		name           string
		request        models.AuthRequest
		expectedStatus int
	}{
		{"valid credentials", models.AuthRequest{Email: "ADA@example.com", Password: testutil.TestPassword}, http.StatusOK},
		{"wrong password", models.AuthRequest{Email: "ada@example.com", Password: "not-the-password"}, http.StatusUnauthorized},
		{"unknown user", models.AuthRequest{Email: "nobody@example.com", Password: testutil.TestPassword}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/auth/login", tt.request, nil)
			w := httptest.NewRecorder()
			handler.Login(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	// Login backfills the default library for users created without one
	var count int
	db.QueryRow(`SELECT COUNT(*) FROM notebook WHERE user_id = $1`, user.ID).Scan(&count)
	if count != 1 {
		t.Errorf("Expected login to create the Unsorted notebook, got %d notebooks", count)
	}
}

func TestMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewAuthHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")

	w := call(handler.Me, user, "GET", "/api/auth/me", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.UserResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.User.ID != user.ID || resp.User.Email != user.Email {
		t.Errorf("Unexpected user %+v", resp.User)
	}

	ghost := testutil.TestUser{ID: "deleted-user"}
	w = call(handler.Me, ghost, "GET", "/api/auth/me", nil)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewAuthHandler(db, cfg)
	user := testutil.CreateTestUser(t, db, cfg, "ada@example.com")

	tests := []struct {
		name           string
		request        models.ChangePasswordRequest
		expectedStatus int
	}{
		{"wrong current password", models.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "new-password"}, http.StatusBadRequest},
		{"new password too short after trim", models.ChangePasswordRequest{CurrentPassword: testutil.TestPassword, NewPassword: "  short  "}, http.StatusBadRequest},
		{"valid change", models.ChangePasswordRequest{CurrentPassword: testutil.TestPassword, NewPassword: " new-password "}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(handler.ChangePassword, user, "POST", "/api/auth/change-password", tt.request)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	var hash string
	db.QueryRow(`SELECT password_hash FROM app_user WHERE id = $1`, user.ID).Scan(&hash)
	if !auth.CheckPassword(hash, "new-password") {
		t.Error("Expected the trimmed new password to be stored")
	}
}
