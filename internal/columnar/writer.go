// Package columnar writes record batches as Parquet and reads Parquet back.
package columnar

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"convert-json-to-parquet/internal/records"
	"convert-json-to-parquet/internal/schema"
	"convert-json-to-parquet/pkg/types"
)

// ErrNoColumns is returned for a schema without fields. Parquet files
// need at least one column.
var ErrNoColumns = errors.New("schema has no columns")

// WriterOptions controls Parquet encoding.
type WriterOptions struct {
	Compression string
	BatchSize   int
	Allocator   memory.Allocator
}

var codecs = map[string]compress.Compression{
	"none":         compress.Codecs.Uncompressed,
	"uncompressed": compress.Codecs.Uncompressed,
	"snappy":       compress.Codecs.Snappy,
	"gzip":         compress.Codecs.Gzip,
	"zstd":         compress.Codecs.Zstd,
	"brotli":       compress.Codecs.Brotli,
}

// Codec maps a compression name to its Parquet codec.
func Codec(name string) (compress.Compression, error) {
	if name == "" {
		name = types.DefaultCompression
	}
	c, ok := codecs[strings.ToLower(name)]
	if !ok {
		return compress.Codecs.Uncompressed, fmt.Errorf("unknown compression %q", name)
	}
	return c, nil
}

// Extension returns the part file suffix for a compression name,
// e.g. ".snappy.parquet".
func Extension(name string) string {
	name = strings.ToLower(name)
	if name == "" {
		name = types.DefaultCompression
	}
	if name == "none" || name == "uncompressed" {
		return ".parquet"
	}
	return "." + name + ".parquet"
}

// WriteParquet encodes recs with schema s as one Parquet file on w and
// returns the number of rows written. w is not closed.
func WriteParquet(w io.Writer, s *arrow.Schema, recs []records.Record, opts WriterOptions) (int64, error) {
	if s.NumFields() == 0 {
		return 0, ErrNoColumns
	}
	codec, err := Codec(opts.Compression)
	if err != nil {
		return 0, err
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = types.DefaultBatchSize
	}
	mem := opts.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	normalized := make([]records.Record, len(recs))
	for i, r := range recs {
		n, err := schema.Normalize(r, s)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		normalized[i] = n
	}

	props := parquet.NewWriterProperties(parquet.WithCompression(codec), parquet.WithAllocator(mem))
	// The anonymous struct hides any Close method so the caller keeps ownership of w.
	pw, err := pqarrow.NewFileWriter(s, struct{ io.Writer }{w}, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return 0, fmt.Errorf("creating parquet writer: %w", err)
	}

	rb := array.NewRecordBuilder(mem, s)
	defer rb.Release()

	var rows int64
	flush := func() error {
		rec := rb.NewRecord()
		defer rec.Release()
		if rec.NumRows() == 0 {
			return nil
		}
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("writing record batch: %w", err)
		}
		rows += rec.NumRows()
		return nil
	}

	for i, r := range normalized {
		if err := appendRecord(rb, s, r); err != nil {
			pw.Close()
			return rows, fmt.Errorf("record %d: %w", i, err)
		}
		if (i+1)%batchSize == 0 {
			if err := flush(); err != nil {
				pw.Close()
				return rows, err
			}
		}
	}
	if err := flush(); err != nil {
		pw.Close()
		return rows, err
	}

	if err := pw.Close(); err != nil {
		return rows, fmt.Errorf("closing parquet writer: %w", err)
	}
	return rows, nil
}
