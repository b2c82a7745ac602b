// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Library defaults
const (
	DefaultNotebookColor = "#14b8a6"
	DefaultNotebookIcon  = "Atom"
	DefaultNoteTitle     = "Untitled Note"
	DefaultDevice        = "unknown"

	UnsortedName     = "Unsorted"
	InboxSubjectName = "Inbox"
)

// Inbox types
const (
	InboxTablet = "tablet"
)

// InboxNotebookNames maps a supported inbox type to its notebook name.
var InboxNotebookNames = map[string]string{
	InboxTablet: "Tablet Inbox",
}

const TokenTypeBearer = "bearer"

// Request types

type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type SubjectRequest struct {
	Name string `json:"name"`
}

type CreateNotebookRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// nil fields are left unchanged
type UpdateNotebookRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type CreateNoteRequest struct {
	Title      string `json:"title"`
	Device     string `json:"device"`
	NotebookID string `json:"notebook_id"`
}

type DeviceNoteRequest struct {
	Title      string `json:"title"`
	DeviceType string `json:"device_type"`
	DeviceID   string `json:"device_id"`
}

// One capture event. Strokes are stored verbatim; their shape is only
// interpreted when the note's ink is rendered.
type StrokesRequest struct {
	Strokes    []map[string]any `json:"strokes"`
	CapturedAt *string          `json:"captured_at,omitempty"`
}

type SummaryRequest struct {
	Summary string `json:"summary"`
}

type OCRRequest struct {
	Text       string   `json:"ocr_text"`
	Engine     string   `json:"ocr_engine"`
	Confidence *float64 `json:"ocr_confidence"`
}

type FlashcardsRequest struct {
	Cards []Card `json:"cards"`
}

// Response types

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type UserResponse struct {
	User User `json:"user"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type LibraryResponse struct {
	Subjects  []Subject  `json:"subjects"`
	Notebooks []Notebook `json:"notebooks"`
}

type SubjectsResponse struct {
	Subjects []Subject `json:"subjects"`
}

type SubjectNotebooksResponse struct {
	Subject   Ref        `json:"subject"`
	Notebooks []Notebook `json:"notebooks"`
}

type CreateNoteResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type DeviceNoteResponse struct {
	NoteID     string `json:"note_id"`
	NotebookID string `json:"notebook_id"`
}

type AddCaptureResponse struct {
	ID  string `json:"id"`
	Seq int64  `json:"seq"`
}

type UploadResponse struct {
	File NoteFile `json:"file"`
}

type FlashcardsResponse struct {
	NoteID string `json:"note_id"`
	Cards  []Card `json:"cards"`
}

type OCRResponse struct {
	NoteID        string     `json:"note_id"`
	OCRText       string     `json:"ocr_text"`
	OCRHTML       string     `json:"ocr_html"`
	OCREngine     *string    `json:"ocr_engine"`
	OCRConfidence *float64   `json:"ocr_confidence"`
	OCRUpdatedAt  *time.Time `json:"ocr_updated_at"`
}

// Domain types

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Ref struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type Subject struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NotebookCount int    `json:"notebook_count"`
}

type Notebook struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Icon      string     `json:"icon"`
	NoteCount int        `json:"note_count"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type InboxNotebook struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	IsInbox   bool   `json:"is_inbox"`
	InboxType string `json:"inbox_type"`
	SubjectID string `json:"subject_id"`
}

type NoteSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	UpdatedAt      time.Time `json:"updated_at"`
	FlashcardCount int       `json:"flashcard_count"`
}

type NoteDetail struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Device        string     `json:"device"`
	Summary       *string    `json:"summary"`
	SummaryHTML   string     `json:"summary_html"`
	OCRText       *string    `json:"ocr_text"`
	OCREngine     *string    `json:"ocr_engine"`
	OCRConfidence *float64   `json:"ocr_confidence"`
	OCRUpdatedAt  *time.Time `json:"ocr_updated_at"`
	Subject       Ref        `json:"subject"`
	Notebook      Ref        `json:"notebook"`
	CaptureCount  int        `json:"capture_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Cards         []Card     `json:"cards"`
	Files         []NoteFile `json:"files"`
}

// Capture is one stored stroke-capture event. Payload is the stored JSON
// document, or the raw text when it does not parse.
type Capture struct {
	ID        string    `json:"id"`
	NoteID    string    `json:"note_id"`
	Seq       int64     `json:"seq"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

type NoteFile struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	URL              string    `json:"url"`
	CreatedAt        time.Time `json:"created_at"`
	StoredFilename   string    `json:"-"`
}

type Card struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Deck struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
}

type DeckDetail struct {
	Deck
	Summary     *string `json:"summary"`
	SummaryHTML string  `json:"summary_html"`
	Cards       []Card  `json:"cards"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
