package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"convert-json-to-parquet/pkg/types"
)

var (
	// ErrNotObject is returned when a top-level value is not a JSON object
	// (or an array of objects).
	ErrNotObject = errors.New("top-level JSON value is not an object")
	// ErrMalformed is returned for input that is not valid JSON.
	ErrMalformed = errors.New("malformed JSON record")
	// ErrSeparator is returned for separators that would be ambiguous with JSON.
	ErrSeparator = errors.New("invalid record separator")
	// ErrNumber is returned for numbers too large for a 64-bit float.
	ErrNumber = errors.New("number out of range")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ValidateFormat checks that the format options can be decoded.
func ValidateFormat(opts types.FormatOptions) error {
	_, err := separatorByte(opts.Separator)
	return err
}

func separatorByte(sep string) (byte, error) {
	if sep == "" {
		sep = types.DefaultSeparator
	}
	if len(sep) != 1 {
		return 0, fmt.Errorf("%w: %q must be a single character", ErrSeparator, sep)
	}
	if strings.ContainsAny(sep, "{}[]\":-0123456789tfn") {
		return 0, fmt.Errorf("%w: %q can start or appear inside a JSON value", ErrSeparator, sep)
	}
	return sep[0], nil
}

// Decode reads every record from r. Top-level JSON objects may be
// separated by whitespace and the configured separator; a top-level array
// of objects contributes each element. source names the input in errors.
func Decode(r io.Reader, source string, opts types.FormatOptions) ([]Record, error) {
	sep, err := separatorByte(opts.Separator)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if opts.WithHeader {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			data = data[i+1:]
		} else {
			data = nil
		}
	}

	var out []Record
	pos := 0
	for {
		pos = skipSeparators(data, pos, sep)
		if pos >= len(data) {
			break
		}

		dec := json.NewDecoder(bytes.NewReader(data[pos:]))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %s at offset %d: %v", ErrMalformed, source, pos, err)
		}
		if lit, ok := overflowingNumber(v); ok {
			return nil, fmt.Errorf("%w: %s at offset %d: %s", ErrNumber, source, pos, lit)
		}

		switch t := v.(type) {
		case map[string]any:
			out = append(out, Record(t))
		case []any:
			for i, elem := range t {
				obj, ok := elem.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%w: %s at offset %d: array element %d is %T", ErrNotObject, source, pos, i, elem)
				}
				out = append(out, Record(obj))
			}
		default:
			return nil, fmt.Errorf("%w: %s at offset %d: got %T", ErrNotObject, source, pos, v)
		}

		pos += int(dec.InputOffset())
	}

	return out, nil
}

// overflowingNumber finds the first number in v that parses to an
// infinite float64.
func overflowingNumber(v any) (json.Number, bool) {
	switch t := v.(type) {
	case json.Number:
		if f, _ := strconv.ParseFloat(string(t), 64); math.IsInf(f, 0) {
			return t, true
		}
	case map[string]any:
		for _, e := range t {
			if n, ok := overflowingNumber(e); ok {
				return n, true
			}
		}
	case []any:
		for _, e := range t {
			if n, ok := overflowingNumber(e); ok {
				return n, true
			}
		}
	}
	return "", false
}

func skipSeparators(data []byte, pos int, sep byte) int {
	for pos < len(data) {
		switch data[pos] {
		case ' ', '\t', '\r', '\n':
		default:
			if data[pos] != sep {
				return pos
			}
		}
		pos++
	}
	return pos
}

// Decompress wraps r in a gzip reader when name ends in .gz.
func Decompress(name string, r io.Reader) (io.ReadCloser, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".gz") {
		return io.NopCloser(r), nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip %s: %w", name, err)
	}
	return zr, nil
}
