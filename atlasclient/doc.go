// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package atlasclient is a typed HTTP client for the Atlas API.
//
//	c := atlasclient.New("http://localhost:8080", token)
//	captures, err := c.Captures(ctx, noteID)
//	drawing := ink.Normalize(captures)
//
// Non-2xx responses are returned as *APIError, which wraps ErrRequestFailed.
package atlasclient
