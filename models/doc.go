// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - AuthRequest: email, password
  - ChangePasswordRequest: current_password, new_password
  - SubjectRequest: name
  - CreateNotebookRequest / UpdateNotebookRequest: name, color, icon
  - CreateNoteRequest: title, device, notebook_id
  - DeviceNoteRequest: title, device_type, device_id
  - StrokesRequest: strokes, captured_at
  - SummaryRequest, OCRRequest: externally produced text
  - FlashcardsRequest: cards

# Response Types

  - AuthResponse: access_token, token_type, user
  - LibraryResponse: subjects and notebooks with counts
  - NoteDetail: everything the note page needs, including summary_html
  - Capture: one stored stroke-capture event, in capture order
  - Deck / DeckDetail: notes that have flashcards
  - ErrorResponse: error, message

Rendered ink is served as ink.Drawing directly.

# Defaults

New notebooks use color "#14b8a6" and icon "Atom"; notes default to
"Untitled Note" from device "unknown". Every user owns an "Unsorted"
subject and notebook. Inbox notebooks live under the "Inbox" subject, one
per supported inbox type:

	InboxTablet = "tablet" → "Tablet Inbox"
*/
package models
