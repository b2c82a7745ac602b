// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, access tokens and ID generation.

# Passwords

Passwords are hashed with bcrypt:

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

New passwords must pass ValidatePassword (at least 8 characters, at most
72 bytes). Emails are compared after NormalizeEmail.

# Access Tokens

Access tokens are HS256 JWTs carrying the user ID and email:

	token, err := auth.IssueToken(secret, userID, email, ttl, time.Now())
	claims, err := auth.ParseToken(secret, token)

ParseToken returns ErrTokenExpired for expired tokens and wraps
ErrInvalidToken for anything else (bad signature, wrong algorithm,
malformed). BearerToken pulls the token out of an Authorization header.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
