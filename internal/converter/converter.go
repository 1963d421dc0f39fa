// Package converter reads every JSON record at an input location and
// writes them as Parquet part files to an output location.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/google/uuid"
	"github.com/xitongsys/parquet-go-source/local"
	"go.uber.org/zap"

	"convert-json-to-parquet/internal/columnar"
	"convert-json-to-parquet/internal/location"
	"convert-json-to-parquet/internal/records"
	"convert-json-to-parquet/internal/schema"
	"convert-json-to-parquet/internal/storage"
	"convert-json-to-parquet/pkg/types"
)

var (
	// ErrVerify is returned when a staged part file's footer row count
	// differs from the number of rows written.
	ErrVerify = errors.New("parquet verification failed")
	// ErrOverlap is returned when overwriting the output would delete input.
	ErrOverlap = errors.New("input lies within output location")
)

// Result summarises a run.
type Result struct {
	InputObjects int
	Records      int64
	Files        []string
	Bytes        int64
}

// Converter performs one conversion.
type Converter struct {
	cfg    types.JobConfig
	input  location.Location
	output location.Location
	src    storage.Store
	dst    storage.Store
	log    *zap.SugaredLogger
	newID  func() string
}

// New validates cfg and returns a converter reading from src and writing to dst.
func New(cfg types.JobConfig, src, dst storage.Store, log *zap.SugaredLogger) (*Converter, error) {
	cfg = cfg.WithDefaults()

	in, err := location.Parse(cfg.InputLoc)
	if err != nil {
		return nil, fmt.Errorf("input location: %w", err)
	}
	out, err := location.Parse(cfg.OutputLoc)
	if err != nil {
		return nil, fmt.Errorf("output location: %w", err)
	}
	if err := records.ValidateFormat(cfg.Format); err != nil {
		return nil, err
	}
	if _, err := columnar.Codec(cfg.Output.Compression); err != nil {
		return nil, err
	}
	switch cfg.Output.Mode {
	case types.ModeAppend:
	case types.ModeOverwrite:
		if overlaps(in, out) {
			return nil, fmt.Errorf("%w: %s in %s", ErrOverlap, in, out)
		}
	default:
		return nil, fmt.Errorf("unknown write mode %q", cfg.Output.Mode)
	}
	if cfg.Output.MaxRecordsPerFile < 0 {
		return nil, fmt.Errorf("max records per file must not be negative, got %d", cfg.Output.MaxRecordsPerFile)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Converter{
		cfg:    cfg,
		input:  in,
		output: out,
		src:    src,
		dst:    dst,
		log:    log,
		newID:  uuid.NewString,
	}, nil
}

// NewFromConfig builds the stores for the configured locations and
// returns a converter over them.
func NewFromConfig(ctx context.Context, cfg types.JobConfig, log *zap.SugaredLogger) (*Converter, error) {
	in, err := location.Parse(cfg.InputLoc)
	if err != nil {
		return nil, fmt.Errorf("input location: %w", err)
	}
	out, err := location.Parse(cfg.OutputLoc)
	if err != nil {
		return nil, fmt.Errorf("output location: %w", err)
	}

	src, err := storage.ForScheme(ctx, in.Scheme, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("building input store: %w", err)
	}
	dst := src
	if out.Scheme != in.Scheme {
		if dst, err = storage.ForScheme(ctx, out.Scheme, cfg.S3); err != nil {
			return nil, fmt.Errorf("building output store: %w", err)
		}
	}
	return New(cfg, src, dst, log)
}

// Run reads all records at the input location, then writes them all to
// the output location. Empty input writes nothing.
func (c *Converter) Run(ctx context.Context) (Result, error) {
	var result Result

	batch, err := c.read(ctx)
	if err != nil {
		return result, err
	}
	result.InputObjects = batch.Sources

	if batch.Len() == 0 {
		c.log.Warnw("no input records, nothing written", "input", c.input.String(), "objects", batch.Sources)
		return result, nil
	}

	s := schema.Infer(batch.Records)
	if s.NumFields() == 0 {
		return result, fmt.Errorf("%w: %d records at %s have no fields", columnar.ErrNoColumns, batch.Len(), c.input)
	}
	c.log.Infow("schema inferred", "records", batch.Len(), "fields", s.NumFields())
	c.log.Debugw("schema", "fields", batch.Fields(), "schema", s.String())

	if c.cfg.Output.Mode == types.ModeOverwrite {
		if err := c.clearOutput(ctx); err != nil {
			return result, err
		}
	}

	staging, err := os.MkdirTemp(c.cfg.Output.StagingDir, "convert-json-to-parquet-")
	if err != nil {
		return result, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	runID := c.newID()
	ext := columnar.Extension(c.cfg.Output.Compression)
	for i, chunk := range batch.Chunks(c.cfg.Output.MaxRecordsPerFile) {
		name := fmt.Sprintf("part-%05d-%s%s", i, runID, ext)
		dest := c.output.Join(name)

		rows, size, err := c.writePart(ctx, s, chunk, filepath.Join(staging, name), dest)
		if err != nil {
			return result, err
		}
		result.Records += rows
		result.Bytes += size
		result.Files = append(result.Files, dest.String())
		c.log.Infow("part file written", "output", dest.String(), "records", rows, "bytes", size)
	}

	return result, nil
}

func (c *Converter) read(ctx context.Context) (*records.Batch, error) {
	objects, err := c.src.List(ctx, c.input)
	if err != nil {
		return nil, fmt.Errorf("listing input: %w", err)
	}

	batch := &records.Batch{}
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := c.readObject(ctx, obj)
		if err != nil {
			return nil, err
		}
		batch.Add(recs)
		c.log.Debugw("input object read", "input", obj.Location.String(), "records", len(recs), "bytes", obj.Size)
	}
	return batch, nil
}

func (c *Converter) readObject(ctx context.Context, obj storage.Object) ([]records.Record, error) {
	rc, err := c.src.Open(ctx, obj.Location)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	defer rc.Close()

	r, err := records.Decompress(obj.Location.Path, rc)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return records.Decode(r, obj.Location.String(), c.cfg.Format)
}

func (c *Converter) writePart(ctx context.Context, s *arrow.Schema, recs []records.Record, stagedPath string, dest location.Location) (int64, int64, error) {
	fw, err := local.NewLocalFileWriter(stagedPath)
	if err != nil {
		return 0, 0, fmt.Errorf("creating staged file: %w", err)
	}

	rows, err := columnar.WriteParquet(fw, s, recs, columnar.WriterOptions{
		Compression: c.cfg.Output.Compression,
		BatchSize:   c.cfg.Output.BatchSize,
	})
	if cerr := fw.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing staged file: %w", cerr)
	}
	if err != nil {
		return 0, 0, err
	}

	if c.cfg.Output.Verify {
		footerRows, err := columnar.CountRows(stagedPath)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrVerify, err)
		}
		if footerRows != rows {
			return 0, 0, fmt.Errorf("%w: %s has %d rows, wrote %d", ErrVerify, filepath.Base(stagedPath), footerRows, rows)
		}
	}

	f, err := os.Open(stagedPath)
	if err != nil {
		return 0, 0, fmt.Errorf("opening staged file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, 0, fmt.Errorf("opening staged file: %w", err)
	}

	if err := c.dst.Put(ctx, dest, f); err != nil {
		return 0, 0, fmt.Errorf("uploading part file: %w", err)
	}
	return rows, info.Size(), nil
}

func (c *Converter) clearOutput(ctx context.Context) error {
	existing, err := c.dst.List(ctx, c.output)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("listing output: %w", err)
	}
	for _, obj := range existing {
		if err := c.dst.Delete(ctx, obj.Location); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("clearing output: %w", err)
		}
	}
	if len(existing) > 0 {
		c.log.Infow("output cleared", "output", c.output.String(), "objects", len(existing))
	}
	return nil
}

// overlaps reports whether in is the same as, or beneath, out.
func overlaps(in, out location.Location) bool {
	if in.Scheme != out.Scheme || in.Bucket != out.Bucket {
		return false
	}
	o := strings.TrimSuffix(out.Path, "/")
	i := strings.TrimSuffix(in.Path, "/")
	return o == "" || i == o || strings.HasPrefix(i, o+"/")
}
