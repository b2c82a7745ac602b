// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package markdown renders note summaries and OCR text to safe HTML.
//
// Summaries come from external AI services and are stored verbatim. They use
// a small Markdown subset (headings, bullet lists, bold, paragraphs), but
// any CommonMark renders. Output always passes through a UGC sanitizer, so
// raw HTML in the source cannot inject scripts or handlers.
package markdown

import (
	"bytes"
	stdhtml "html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy = bluemonday.UGCPolicy()
)

// ToHTML renders src. Blank input renders to "".
func ToHTML(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		// goldmark only fails on writer errors; fall back to escaped text.
		slog.Error("failed to render markdown", "error", err)
		return "<p>" + stdhtml.EscapeString(src) + "</p>"
	}
	return string(policy.SanitizeBytes(buf.Bytes()))
}
