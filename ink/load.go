// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotCaptures is returned when a document is neither a capture batch
// nor a single payload.
var ErrNotCaptures = errors.New("document is not a capture batch or payload")

// DecodePayload parses one stored capture payload. Numbers are kept as
// json.Number so coordinates survive without float round-trips.
func DecodePayload(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("failed to decode payload: trailing data")
	}
	return v, nil
}

// CapturesFrom interprets a decoded JSON or YAML document. Accepted shapes:
//
//   - a sequence of captures ({"payload": ...}); elements without a
//     payload key are taken as payloads themselves
//   - {"captures": [...]}, a wrapped sequence as above
//   - a single capture {"payload": ...}
//   - a single payload {"strokes": [...]}
func CapturesFrom(doc any) ([]Capture, error) {
	if seq, ok := sequence(doc); ok {
		return capturesFromSeq(seq), nil
	}
	if !isMapping(doc) {
		return nil, ErrNotCaptures
	}
	if v, ok := field(doc, "captures"); ok {
		if seq, ok := sequence(v); ok {
			return capturesFromSeq(seq), nil
		}
	}
	if p, ok := field(doc, "payload"); ok {
		return []Capture{{Payload: p}}, nil
	}
	if _, ok := field(doc, "strokes"); ok {
		return []Capture{{Payload: doc}}, nil
	}
	return nil, ErrNotCaptures
}

func capturesFromSeq(seq []any) []Capture {
	captures := make([]Capture, 0, len(seq))
	for _, el := range seq {
		if p, ok := field(el, "payload"); ok {
			captures = append(captures, Capture{Payload: p})
			continue
		}
		captures = append(captures, Capture{Payload: el})
	}
	return captures
}
