package columnar

import (
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// ColumnInfo describes one leaf column chunk.
type ColumnInfo struct {
	Path  string `yaml:"path"`
	Type  string `yaml:"type"`
	Codec string `yaml:"codec"`
}

// Metadata summarises a Parquet file footer.
type Metadata struct {
	Rows      int64        `yaml:"rows"`
	RowGroups int          `yaml:"row_groups"`
	CreatedBy string       `yaml:"created_by,omitempty"`
	Columns   []ColumnInfo `yaml:"columns"`
}

// Inspect reads the footer of the Parquet file at path.
func Inspect(path string) (Metadata, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 1)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading footer of %s: %w", path, err)
	}
	defer pr.ReadStop()

	footer := pr.Footer
	md := Metadata{
		Rows:      pr.GetNumRows(),
		RowGroups: len(footer.RowGroups),
	}
	if footer.CreatedBy != nil {
		md.CreatedBy = *footer.CreatedBy
	}
	if len(footer.RowGroups) > 0 {
		for _, cc := range footer.RowGroups[0].Columns {
			if cc.MetaData == nil {
				continue
			}
			md.Columns = append(md.Columns, ColumnInfo{
				Path:  strings.Join(cc.MetaData.PathInSchema, "."),
				Type:  cc.MetaData.Type.String(),
				Codec: cc.MetaData.Codec.String(),
			})
		}
	}
	return md, nil
}

// CountRows returns the row count recorded in the footer of the file at path.
func CountRows(path string) (int64, error) {
	md, err := Inspect(path)
	if err != nil {
		return 0, err
	}
	return md.Rows, nil
}
