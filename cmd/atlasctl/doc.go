// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Atlasctl renders handwriting captures outside the server.
//
//	atlasctl render captures/**/*.json --format png --out renders/
//	atlasctl render page.yaml --watch -o renders/
//	atlasctl fetch NOTE_ID --token $ATLAS_TOKEN > note.svg
//	atlasctl notes NOTEBOOK_ID
//
// Capture files hold a batch ([{"payload": ...}]), a wrapped batch
// ({"captures": [...]}), a single capture or a single payload, in JSON or
// YAML. Rendering goes through the same normalizer the server uses, so a
// file renders identically locally and from GET /api/notes/{id}/ink.svg.
//
// The --server and --token flags default to ATLAS_SERVER and ATLAS_TOKEN.
// Pass -v for debug logging.
package main
