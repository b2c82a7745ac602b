// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"

	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/testutil"
)

// asUser attaches the user the auth middleware would have resolved
func asUser(req *http.Request, user testutil.TestUser) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), user.ID))
}

// call runs handler against a request for user with path values set
func call(handler http.HandlerFunc, user testutil.TestUser, method, path string, body interface{}, pathValues ...string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest(method, path, body, nil)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	handler(w, asUser(req, user))
	return w
}
