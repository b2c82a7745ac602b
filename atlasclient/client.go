// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package atlasclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/atlas/ink"
	"github.com/danielhkuo/atlas/models"
)

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 30 * time.Second

// ErrRequestFailed is wrapped by every non-2xx response.
var ErrRequestFailed = errors.New("atlas request failed")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrRequestFailed, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// Client talks to a running Atlas server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for baseURL. token may be empty until Login.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Token returns the bearer token in use.
func (c *Client) Token() string {
	return c.token
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", models.AuthRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return models.AuthResponse{}, err
	}
	c.token = resp.AccessToken
	return resp, nil
}

// Captures fetches a note's capture batch in capture order, ready for
// ink.Normalize. Payload numbers are kept as json.Number.
func (c *Client) Captures(ctx context.Context, noteID string) ([]ink.Capture, error) {
	var raw []struct {
		Payload any `json:"payload"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID)+"/strokes", nil, &raw); err != nil {
		return nil, err
	}

	captures := make([]ink.Capture, len(raw))
	for i, r := range raw {
		captures[i] = ink.Capture{Payload: r.Payload}
	}
	return captures, nil
}

// Note fetches one note's details.
func (c *Client) Note(ctx context.Context, noteID string) (models.NoteDetail, error) {
	var note models.NoteDetail
	err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID), nil, &note)
	return note, err
}

// NotebookNotes lists a notebook's notes, newest first.
func (c *Client) NotebookNotes(ctx context.Context, notebookID string) ([]models.NoteSummary, error) {
	var notes []models.NoteSummary
	err := c.do(ctx, http.MethodGet, "/api/notebooks/"+url.PathEscape(notebookID)+"/notes", nil, &notes)
	return notes, err
}

// AddStrokes appends one capture to a note.
func (c *Client) AddStrokes(ctx context.Context, noteID string, req models.StrokesRequest) (models.AddCaptureResponse, error) {
	var resp models.AddCaptureResponse
	err := c.do(ctx, http.MethodPost, "/api/notes/"+url.PathEscape(noteID)+"/strokes", req, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	var body models.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
