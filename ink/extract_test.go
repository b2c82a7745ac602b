// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeStroke decodes a JSON object the way the API layer does.
func decodeStroke(t *testing.T, src string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(src), &m))
	return m
}

func TestExtractPoints(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Point
	}{
		{
			name: "no point fields",
			in:   `{"color":"red","width":3}`,
			want: []Point{},
		},
		{
			name: "empty object",
			in:   `{}`,
			want: []Point{},
		},
		{
			name: "null points",
			in:   `{"points":null}`,
			want: []Point{},
		},
		{
			name: "parallel arrays",
			in:   `{"x":[1,2,3],"y":[4,5,6]}`,
			want: []Point{{1, 4}, {2, 5}, {3, 6}},
		},
		{
			name: "parallel arrays of uneven length",
			in:   `{"x":[1,2,3],"y":[4,5]}`,
			want: []Point{{1, 4}, {2, 5}},
		},
		{
			name: "x without y",
			in:   `{"x":[1,2,3]}`,
			want: []Point{},
		},
		{
			name: "pairs",
			in:   `{"points":[[0,0],[10,10]]}`,
			want: []Point{{0, 0}, {10, 10}},
		},
		{
			name: "objects under path",
			in:   `{"path":[{"x":1.5,"y":-2},{"x":3,"y":4}]}`,
			want: []Point{{1.5, -2}, {3, 4}},
		},
		{
			name: "segments",
			in:   `{"segments":[[7,8]]}`,
			want: []Point{{7, 8}},
		},
		{
			name: "malformed entries are skipped",
			in:   `{"points":[[0,0],{"x":1,"y":2},"bad",[1],[1,"2"],{"x":"3","y":4},null,[5,6,7],{"x":9}]}`,
			want: []Point{{0, 0}, {1, 2}, {5, 6}},
		},
		{
			name: "points wins over path",
			in:   `{"points":[[1,1]],"path":[[2,2]]}`,
			want: []Point{{1, 1}},
		},
		{
			name: "points wins over parallel arrays",
			in:   `{"points":[[1,1]],"x":[5],"y":[5]}`,
			want: []Point{{1, 1}},
		},
		{
			name: "non-sequence points falls through to path",
			in:   `{"points":"not-an-array","path":[[2,2]]}`,
			want: []Point{{2, 2}},
		},
		{
			name: "non-sequence points with nothing else",
			in:   `{"points":"not-an-array"}`,
			want: []Point{},
		},
		{
			name: "empty points sequence is still the candidate",
			in:   `{"points":[],"path":[[2,2]]}`,
			want: []Point{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPoints(decodeStroke(t, tt.in))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractPoints() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractPoints_JSONNumbers(t *testing.T) {
	dec := json.NewDecoder(bytes.NewReader([]byte(`{"points":[[1.25,2],{"x":3,"y":4e1}]}`)))
	dec.UseNumber()
	var raw map[string]any
	require.NoError(t, dec.Decode(&raw))

	assert.Equal(t, []Point{{1.25, 2}, {3, 40}}, ExtractPoints(raw))
}

func TestExtractPoints_TypedValues(t *testing.T) {
	raw := map[string]any{
		"points": [][]float64{{1, 2}, {3, 4}},
	}
	assert.Equal(t, []Point{{1, 2}, {3, 4}}, ExtractPoints(raw))

	raw = map[string]any{
		"path": []map[string]int{{"x": 5, "y": 6}},
	}
	assert.Equal(t, []Point{{5, 6}}, ExtractPoints(raw))

	raw = map[string]any{
		"x": []int{1, 2},
		"y": []int64{3, 4},
	}
	assert.Equal(t, []Point{{1, 3}, {2, 4}}, ExtractPoints(raw))
}

func TestExtractPoints_NeverLongerThanCandidates(t *testing.T) {
	raw := decodeStroke(t, `{"points":[[1,2],"x",{"x":1},[3,4]]}`)
	got := ExtractPoints(raw)
	assert.LessOrEqual(t, len(got), 4)
	assert.Len(t, got, 2)
}
