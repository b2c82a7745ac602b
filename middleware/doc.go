// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/library", middleware.WithLogging(handler))

Logs one line per request with request_id, method, path, remote, status,
bytes and duration_ms. 5xx responses log at error level. Every response
carries an X-Request-ID header.

# Authentication

RequireAuth validates the bearer token and puts the user ID in the
request context:

	protected := middleware.RequireAuth(cfg.JWTSecret)
	mux.HandleFunc("GET /api/library", middleware.WithLogging(protected(h.GetLibrary)))

	userID, _ := middleware.UserID(r.Context())

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

An empty origin list reflects any origin. Otherwise only listed origins
get CORS headers and other preflights are refused.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SubjectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

ParseJSONBody reads at most MaxJSONBody bytes.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
*/
package middleware
