package columnar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"convert-json-to-parquet/internal/records"
)

// ReadParquet reads up to limit rows (all rows if limit <= 0) from a
// Parquet file. Null columns come back as explicit nil values.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker, limit int) ([]records.Record, *arrow.Schema, error) {
	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(ctx, r, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, nil, fmt.Errorf("reading parquet: %w", err)
	}
	defer tbl.Release()

	tr := array.NewTableReader(tbl, 1024)
	defer tr.Release()

	var out []records.Record
	for tr.Next() {
		b, err := tr.Record().MarshalJSON()
		if err != nil {
			return nil, nil, fmt.Errorf("encoding rows: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var rows []records.Record
		if err := dec.Decode(&rows); err != nil {
			return nil, nil, fmt.Errorf("decoding rows: %w", err)
		}
		for _, row := range rows {
			if limit > 0 && len(out) >= limit {
				return out, tbl.Schema(), nil
			}
			out = append(out, row)
		}
	}
	return out, tbl.Schema(), nil
}
