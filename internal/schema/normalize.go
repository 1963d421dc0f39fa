package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"

	"convert-json-to-parquet/internal/records"
)

// ErrType is returned when a value cannot be coerced to its field type.
var ErrType = errors.New("value does not match field type")

// Normalize returns a copy of r with every value coerced to its field's
// type in s. Values of string fields that are not strings become their
// JSON text. Fields absent from s are dropped.
func Normalize(r records.Record, s *arrow.Schema) (records.Record, error) {
	out := make(records.Record, len(r))
	for _, f := range s.Fields() {
		v, ok := r[f.Name]
		if !ok {
			continue
		}
		cv, err := coerce(v, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out[f.Name] = cv
	}
	return out, nil
}

func coerce(v any, dt arrow.DataType) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch dt.ID() {
	case arrow.STRING:
		if s, ok := v.(string); ok {
			return s, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrType, err)
		}
		return string(b), nil

	case arrow.BOOL:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	case arrow.INT64, arrow.FLOAT64:
		switch v.(type) {
		case json.Number, int, int8, int16, int32, int64, uint8, uint16, uint32, float32, float64:
			return v, nil
		}

	case arrow.STRUCT:
		st := dt.(*arrow.StructType)
		var m map[string]any
		switch t := v.(type) {
		case map[string]any:
			m = t
		case records.Record:
			m = t
		default:
			return nil, fmt.Errorf("%w: want object, got %T", ErrType, v)
		}
		out := make(map[string]any, len(m))
		for _, f := range st.Fields() {
			cv, ok := m[f.Name]
			if !ok {
				continue
			}
			c, err := coerce(cv, f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			out[f.Name] = c
		}
		return out, nil

	case arrow.LIST:
		lt := dt.(*arrow.ListType)
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: want array, got %T", ErrType, v)
		}
		out := make([]any, len(list))
		for i, e := range list {
			c, err := coerce(e, lt.Elem())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %T for %s", ErrType, v, dt)
}
