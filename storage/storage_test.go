// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndOpen(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)

	name, n, err := s.Save("../../Lecture 3.PDF", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotContains(t, name, "Lecture")
	assert.Equal(t, name, filepath.Base(name))

	f, err := s.Open(name)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStore_UniqueNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	a, _, err := s.Save("a.png", strings.NewReader("1"))
	require.NoError(t, err)
	b, _, err := s.Save("a.png", strings.NewReader("2"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_OpenMissing(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open("nope.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RejectsTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.png"} {
		_, err := s.Open(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestStore_Remove(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	name, _, err := s.Save("x.txt", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(name))
	require.NoError(t, s.Remove(name))

	_, err = s.Open(name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Thumbnail(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	src := image.NewNRGBA(image.Rect(0, 0, 400, 200))
	for x := range 400 {
		for y := range 200 {
			src.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	name, _, err := s.Save("page.png", &buf)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, s.Thumbnail(&out, name, 100))
	thumb, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, 100, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())

	out.Reset()
	require.NoError(t, s.Thumbnail(&out, name, 1000))
	full, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, 400, full.Bounds().Dx())
}

func TestStore_ThumbnailErrors(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	err = s.Thumbnail(io.Discard, "missing.png", 64)
	assert.ErrorIs(t, err, ErrNotFound)

	name, _, err := s.Save("notes.txt", strings.NewReader("not an image"))
	require.NoError(t, err)
	err = s.Thumbnail(io.Discard, name, 64)
	assert.ErrorIs(t, err, ErrNotImage)
}
