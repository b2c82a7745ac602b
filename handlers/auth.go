// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/atlas/auth"
	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/models"
)

type AuthHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := auth.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	userID, err := newID()
	if err != nil {
		slog.Error("failed to generate user ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
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

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM app_user WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO app_user (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, userID, email, hash, now)
	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := ensureUserDefaults(ctx, tx, userID, now); err != nil {
		slog.Error("failed to create default library", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit signup", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	slog.Info("user signed up", "user_id", userID)
	h.respondWithToken(w, http.StatusCreated, models.User{ID: userID, Email: email, CreatedAt: now})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := r.Context()
	var user models.User
	err := h.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM app_user WHERE email = $1
	`, auth.NormalizeEmail(req.Email)).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// Accounts created before defaults existed get them on next login
	if err := ensureUserDefaults(ctx, h.db, user.ID, timestamp()); err != nil {
		slog.Error("failed to ensure default library", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	h.respondWithToken(w, http.StatusOK, user)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.UserResponse{User: user})
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	newPassword := strings.TrimSpace(req.NewPassword)
	if err := auth.ValidatePassword(newPassword); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "New "+err.Error())
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to change password")
		return
	}
	_, err = h.db.ExecContext(r.Context(), `UPDATE app_user SET password_hash = $1 WHERE id = $2`, hash, user.ID)
	if err != nil {
		slog.Error("failed to update password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	slog.Info("password changed", "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// loadUser fetches the authenticated user. A valid token for a deleted
// account is treated as unauthenticated.
func (h *AuthHandler) loadUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	var user models.User
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, email, password_hash, created_at FROM app_user WHERE id = $1
	`, currentUserID(r)).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "User not found")
		return user, false
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return user, false
	}
	return user, true
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := auth.IssueToken(h.cfg.JWTSecret, user.ID, user.Email, h.cfg.JWTExpiry, timestamp())
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	middleware.JSONResponse(w, status, models.AuthResponse{
		AccessToken: token,
		TokenType:   models.TokenTypeBearer,
		User:        user,
	})
}
