package types

// WriteMode controls what happens to objects already present at the output location.
type WriteMode string

const (
	// ModeAppend adds new part files next to whatever is already there.
	ModeAppend WriteMode = "append"
	// ModeOverwrite removes existing objects under the output location before writing.
	ModeOverwrite WriteMode = "overwrite"
)

// FormatOptions describes how the source records are laid out.
type FormatOptions struct {
	// WithHeader discards the first line of every input object.
	WithHeader bool `json:"with_header" yaml:"with_header"`

	// Separator is a single character allowed between top-level JSON values (default ",").
	Separator string `json:"separator" yaml:"separator"`
}

// OutputOptions holds Parquet and write settings for the output location.
type OutputOptions struct {
	// Compression is the Parquet codec: snappy, gzip, zstd, brotli or none (default snappy).
	Compression string `json:"compression" yaml:"compression"`

	// BatchSize is the number of rows per Arrow record batch (default 10000).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxRecordsPerFile splits output into several part files. Zero means one file.
	MaxRecordsPerFile int `json:"max_records_per_file" yaml:"max_records_per_file"`

	// Mode is append (default) or overwrite.
	Mode WriteMode `json:"mode" yaml:"mode"`

	// StagingDir is where part files are written before upload (default os.TempDir()).
	StagingDir string `json:"staging_dir" yaml:"staging_dir"`

	// Verify re-reads each staged part file footer and checks its row count.
	Verify bool `json:"verify" yaml:"verify"`
}

// S3Config holds settings for building the S3 client.
type S3Config struct {
	// Region overrides the region from the default AWS config chain.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint is a custom S3 endpoint (e.g. a local MinIO).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// UsePathStyle forces path-style bucket addressing.
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// JobConfig groups everything a single conversion run needs.
type JobConfig struct {
	JobName   string `json:"job_name" yaml:"job_name"`
	InputLoc  string `json:"input_loc" yaml:"input_loc"`
	OutputLoc string `json:"output_loc" yaml:"output_loc"`

	Format FormatOptions `json:"format" yaml:"format"`
	Output OutputOptions `json:"output" yaml:"output"`
	S3     S3Config      `json:"s3" yaml:"s3"`

	// LedgerPath is the SQLite run ledger file. Empty disables the ledger.
	LedgerPath string `json:"ledger_path,omitempty" yaml:"ledger_path,omitempty"`
}

// Defaults applied by WithDefaults.
const (
	DefaultSeparator   = ","
	DefaultCompression = "snappy"
	DefaultBatchSize   = 10000
)

// WithDefaults returns a copy of c with empty settings filled in.
func (c JobConfig) WithDefaults() JobConfig {
	if c.Format.Separator == "" {
		c.Format.Separator = DefaultSeparator
	}
	if c.Output.Compression == "" {
		c.Output.Compression = DefaultCompression
	}
	if c.Output.BatchSize <= 0 {
		c.Output.BatchSize = DefaultBatchSize
	}
	if c.Output.Mode == "" {
		c.Output.Mode = ModeAppend
	}
	return c
}
