package schema

import (
	"encoding/json"
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convert-json-to-parquet/internal/records"
)

func fieldTypes(s *arrow.Schema) map[string]arrow.DataType {
	out := make(map[string]arrow.DataType)
	for _, f := range s.Fields() {
		out[f.Name] = f.Type
	}
	return out
}

func TestInfer_Scalars(t *testing.T) {
	recs := []records.Record{
		{"a": json.Number("1"), "b": "x", "ok": true, "score": json.Number("2.5")},
		{"a": json.Number("2"), "b": "y", "ok": false, "score": json.Number("3")},
	}

	s := Infer(recs)

	names := make([]string, 0)
	for _, f := range s.Fields() {
		names = append(names, f.Name)
		assert.True(t, f.Nullable, f.Name)
	}
	assert.Equal(t, []string{"a", "b", "ok", "score"}, names)

	types := fieldTypes(s)
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int64, types["a"]))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, types["b"]))
	assert.True(t, arrow.TypeEqual(arrow.FixedWidthTypes.Boolean, types["ok"]))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Float64, types["score"]))
}

func TestInfer_Merges(t *testing.T) {
	recs := []records.Record{
		{"mixed": json.Number("1"), "conflict": json.Number("1"), "sparse": nil, "allnull": nil},
		{"mixed": json.Number("1.5"), "conflict": "one"},
		{"sparse": "later", "empty": map[string]any{}},
	}

	types := fieldTypes(Infer(recs))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Float64, types["mixed"]))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, types["conflict"]))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, types["sparse"]))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, types["allnull"]))
	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, types["empty"]))
}

func TestInfer_Nested(t *testing.T) {
	recs := []records.Record{
		{"user": map[string]any{"id": json.Number("1")}, "tags": []any{"a"}},
		{"user": map[string]any{"name": "bo"}, "tags": []any{}, "nums": []any{json.Number("1"), json.Number("2.5")}},
	}

	types := fieldTypes(Infer(recs))

	wantUser := arrow.StructOf(
		arrow.Field{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		arrow.Field{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	)
	assert.True(t, arrow.TypeEqual(wantUser, types["user"]), "got %s", types["user"])
	assert.True(t, arrow.TypeEqual(arrow.ListOf(arrow.BinaryTypes.String), types["tags"]), "got %s", types["tags"])
	assert.True(t, arrow.TypeEqual(arrow.ListOf(arrow.PrimitiveTypes.Float64), types["nums"]), "got %s", types["nums"])
}

func TestInfer_Empty(t *testing.T) {
	s := Infer(nil)
	assert.Equal(t, 0, s.NumFields())
}

func TestNormalize(t *testing.T) {
	recs := []records.Record{
		{"conflict": json.Number("1"), "obj": map[string]any{"k": json.Number("1")}},
		{"conflict": map[string]any{"z": true}, "obj": map[string]any{"k": "v"}},
		{"conflict": "text", "list": []any{json.Number("1"), "two"}},
	}
	s := Infer(recs)

	got0, err := Normalize(recs[0], s)
	require.NoError(t, err)
	assert.Equal(t, records.Record{"conflict": "1", "obj": map[string]any{"k": "1"}}, got0)

	got1, err := Normalize(recs[1], s)
	require.NoError(t, err)
	assert.Equal(t, records.Record{"conflict": `{"z":true}`, "obj": map[string]any{"k": "v"}}, got1)

	got2, err := Normalize(recs[2], s)
	require.NoError(t, err)
	assert.Equal(t, records.Record{"conflict": "text", "list": []any{"1", "two"}}, got2)
}

func TestNormalize_TypeMismatch(t *testing.T) {
	s := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Int64, Nullable: true}}, nil)
	_, err := Normalize(records.Record{"n": "not a number"}, s)
	require.ErrorIs(t, err, ErrType)
	assert.Contains(t, err.Error(), `"n"`)

	got, err := Normalize(records.Record{"n": nil, "extra": 1}, s)
	require.NoError(t, err)
	assert.Equal(t, records.Record{"n": nil}, got)
}
