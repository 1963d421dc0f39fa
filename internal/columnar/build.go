package columnar

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"

	"convert-json-to-parquet/internal/records"
	"convert-json-to-parquet/internal/schema"
)

// appendRecord appends one normalized record as a row of rb.
func appendRecord(rb *array.RecordBuilder, s *arrow.Schema, r records.Record) error {
	for i, f := range s.Fields() {
		if err := appendValue(rb.Field(i), r[f.Name]); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch b := b.(type) {
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: want string, got %T", schema.ErrType, v)
		}
		b.Append(s)

	case *array.BooleanBuilder:
		t, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: want bool, got %T", schema.ErrType, v)
		}
		b.Append(t)

	case *array.Int64Builder:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		b.Append(n)

	case *array.Float64Builder:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		b.Append(f)

	case *array.StructBuilder:
		var m map[string]any
		switch t := v.(type) {
		case map[string]any:
			m = t
		case records.Record:
			m = t
		default:
			return fmt.Errorf("%w: want object, got %T", schema.ErrType, v)
		}
		b.Append(true)
		st := b.Type().(*arrow.StructType)
		for i, f := range st.Fields() {
			if err := appendValue(b.FieldBuilder(i), m[f.Name]); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
		}

	case *array.ListBuilder:
		list, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%w: want array, got %T", schema.ErrType, v)
		}
		b.Append(true)
		vb := b.ValueBuilder()
		for i, e := range list {
			if err := appendValue(vb, e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}

	default:
		return fmt.Errorf("%w: unsupported column type %s", schema.ErrType, b.Type())
	}
	return nil
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		n, err := strconv.ParseInt(string(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not a 64-bit integer", schema.ErrType, t)
		}
		return n, nil
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	}
	return 0, fmt.Errorf("%w: want integer, got %T", schema.ErrType, v)
}

func toFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %s is out of float64 range", schema.ErrType, t)
		}
		return f, nil
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	}
	if n, err := toInt64(v); err == nil {
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: want number, got %T", schema.ErrType, v)
}
