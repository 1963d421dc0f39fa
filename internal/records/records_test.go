package records

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-json-to-parquet/pkg/types"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  types.FormatOptions
		want  []Record
	}{
		{
			name:  "newline delimited",
			input: "{\"a\":1,\"b\":\"x\"}\n{\"a\":2,\"b\":\"y\"}\n",
			want: []Record{
				{"a": json.Number("1"), "b": "x"},
				{"a": json.Number("2"), "b": "y"},
			},
		},
		{
			name:  "comma separated",
			input: `{"a":1},{"a":2} , {"a":3}`,
			want: []Record{
				{"a": json.Number("1")},
				{"a": json.Number("2")},
				{"a": json.Number("3")},
			},
		},
		{
			name:  "adjacent objects",
			input: `{"a":1}{"a":2}`,
			want:  []Record{{"a": json.Number("1")}, {"a": json.Number("2")}},
		},
		{
			name:  "top level array",
			input: `[{"index":1,"secret":"s1"},{"index":2,"secret":"s2"}]`,
			want: []Record{
				{"index": json.Number("1"), "secret": "s1"},
				{"index": json.Number("2"), "secret": "s2"},
			},
		},
		{
			name:  "custom separator",
			input: `{"a":1}|{"a":2}`,
			opts:  types.FormatOptions{Separator: "|"},
			want:  []Record{{"a": json.Number("1")}, {"a": json.Number("2")}},
		},
		{
			name:  "header line skipped",
			input: "a,b\n{\"a\":1}\n",
			opts:  types.FormatOptions{WithHeader: true},
			want:  []Record{{"a": json.Number("1")}},
		},
		{
			name:  "nested values kept",
			input: `{"user":{"id":7,"tags":["x","y"]},"ok":true,"score":1.5,"none":null}`,
			want: []Record{{
				"user":  map[string]any{"id": json.Number("7"), "tags": []any{"x", "y"}},
				"ok":    true,
				"score": json.Number("1.5"),
				"none":  nil,
			}},
		},
		{
			name:  "byte order mark",
			input: "\xEF\xBB\xBF{\"a\":1}",
			want:  []Record{{"a": json.Number("1")}},
		},
		{
			name:  "empty input",
			input: " \n\t",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input), "test.json", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    types.FormatOptions
		wantErr error
	}{
		{name: "truncated object", input: `{"a":1`, wantErr: ErrMalformed},
		{name: "garbage between records", input: `{"a":1} ; {"a":2}`, wantErr: ErrMalformed},
		{name: "scalar", input: `42`, wantErr: ErrNotObject},
		{name: "array of scalars", input: `[1,2]`, wantErr: ErrNotObject},
		{name: "float overflow", input: `{"a":1e400}`, wantErr: ErrNumber},
		{name: "nested negative overflow", input: `{"a":{"b":[1,-2e999]}}`, wantErr: ErrNumber},
		{name: "multi-char separator", input: `{}`, opts: types.FormatOptions{Separator: "||"}, wantErr: ErrSeparator},
		{name: "brace separator", input: `{}`, opts: types.FormatOptions{Separator: "{"}, wantErr: ErrSeparator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), "bad.json", tt.opts)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_ErrorNamesSourceAndOffset(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"a":1}, 7`), "s3://in/data.json", types.FormatOptions{})
	require.ErrorIs(t, err, ErrNotObject)
	assert.Contains(t, err.Error(), "s3://in/data.json")
	assert.Contains(t, err.Error(), "offset 9")
}

func TestDecode_NumberOutOfRange(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"a":1} {"a":1e400}`), "s3://in/big.json", types.FormatOptions{})
	require.ErrorIs(t, err, ErrNumber)
	assert.Contains(t, err.Error(), "s3://in/big.json")
	assert.Contains(t, err.Error(), "offset 8")
	assert.Contains(t, err.Error(), "1e400")

	recs, err := Decode(strings.NewReader(`{"a":9223372036854775807,"b":1e-400,"c":1.7e308}`), "ok.json", types.FormatOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, json.Number("9223372036854775807"), recs[0]["a"])
}

func TestDecompress(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"a":1}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	rc, err := Decompress("data.json.GZ", &buf)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	plain, err := Decompress("data.json", strings.NewReader("raw"))
	require.NoError(t, err)
	data, _ = io.ReadAll(plain)
	assert.Equal(t, "raw", string(data))

	_, err = Decompress("broken.gz", strings.NewReader("not gzip"))
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	var b Batch
	b.Add([]Record{{"b": 1}, {"a": 2}})
	b.Add(nil)
	b.Add([]Record{{"c": 3}})

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 3, b.Sources)
	assert.Equal(t, []string{"a", "b", "c"}, b.Fields())

	chunks := b.Chunks(2)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 1)
	assert.Len(t, b.Chunks(0), 1)
	assert.Nil(t, (&Batch{}).Chunks(5))
}

func TestRecord_MarshalLine(t *testing.T) {
	line, err := Record{"b": "<x>", "a": json.Number("1")}.MarshalLine()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":"<x>"}`, string(line))
}
