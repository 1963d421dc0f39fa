package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"convert-json-to-parquet/internal/jobargs"
	"convert-json-to-parquet/pkg/types"
)

func TestBaseConfig_Defaults(t *testing.T) {
	cfg := baseConfig(jobargs.FromMap(nil))

	assert.Equal(t, types.DefaultSeparator, cfg.Format.Separator)
	assert.Equal(t, types.DefaultCompression, cfg.Output.Compression)
	assert.Equal(t, types.DefaultBatchSize, cfg.Output.BatchSize)
	assert.Equal(t, types.ModeAppend, cfg.Output.Mode)
	assert.True(t, cfg.Output.Verify)
	assert.Empty(t, cfg.LedgerPath)
}

func TestBaseConfig_FromEnvironment(t *testing.T) {
	cfg := baseConfig(jobargs.FromMap(map[string]string{
		"CONVERT_FORMAT_WITH_HEADER":          "true",
		"CONVERT_FORMAT_SEPARATOR":            ";",
		"CONVERT_OUTPUT_COMPRESSION":          "zstd",
		"CONVERT_OUTPUT_MAX_RECORDS_PER_FILE": "500",
		"CONVERT_OUTPUT_MODE":                 "overwrite",
		"CONVERT_OUTPUT_VERIFY":               "false",
		"CONVERT_S3_ENDPOINT":                 "http://localhost:9000",
		"CONVERT_S3_USE_PATH_STYLE":           "1",
		"CONVERT_LEDGER_PATH":                 "/tmp/runs.db",
	}))

	assert.True(t, cfg.Format.WithHeader)
	assert.Equal(t, ";", cfg.Format.Separator)
	assert.Equal(t, "zstd", cfg.Output.Compression)
	assert.Equal(t, 500, cfg.Output.MaxRecordsPerFile)
	assert.Equal(t, types.ModeOverwrite, cfg.Output.Mode)
	assert.False(t, cfg.Output.Verify)
	assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.Equal(t, "/tmp/runs.db", cfg.LedgerPath)
}
