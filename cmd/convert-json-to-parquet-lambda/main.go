// Package main runs the converter as an AWS Lambda function triggered by
// S3 object-created notifications.
//
// The function reads JOB_NAME and OUTPUT_LOC from its environment. Optional
// settings use the same names as the CLI configuration keys, upper-cased and
// prefixed with CONVERT_ (for example CONVERT_OUTPUT_COMPRESSION).
package main

import (
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"convert-json-to-parquet/internal/job"
	"convert-json-to-parquet/internal/trigger"
	"convert-json-to-parquet/pkg/types"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	h := &trigger.Handler{
		Base:   baseConfig(os.Getenv),
		Lookup: os.Getenv,
		Log:    log,
	}

	if h.Base.LedgerPath != "" {
		ledger, err := job.OpenSQLiteLedger(h.Base.LedgerPath)
		if err != nil {
			log.Fatalw("opening run ledger", "path", h.Base.LedgerPath, "error", err)
		}
		defer ledger.Close()
		h.Ledger = ledger
	}

	lambda.Start(h.Handle)
}

// baseConfig reads the optional settings shared by every triggered run.
func baseConfig(getenv func(string) string) types.JobConfig {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(getenv(key))
		return n
	}
	flag := func(key string, def bool) bool {
		b, err := strconv.ParseBool(getenv(key))
		if err != nil {
			return def
		}
		return b
	}

	return types.JobConfig{
		Format: types.FormatOptions{
			WithHeader: flag("CONVERT_FORMAT_WITH_HEADER", false),
			Separator:  getenv("CONVERT_FORMAT_SEPARATOR"),
		},
		Output: types.OutputOptions{
			Compression:       getenv("CONVERT_OUTPUT_COMPRESSION"),
			BatchSize:         atoi("CONVERT_OUTPUT_BATCH_SIZE"),
			MaxRecordsPerFile: atoi("CONVERT_OUTPUT_MAX_RECORDS_PER_FILE"),
			Mode:              types.WriteMode(getenv("CONVERT_OUTPUT_MODE")),
			StagingDir:        getenv("CONVERT_OUTPUT_STAGING_DIR"),
			Verify:            flag("CONVERT_OUTPUT_VERIFY", true),
		},
		S3: types.S3Config{
			Region:       getenv("CONVERT_S3_REGION"),
			Endpoint:     getenv("CONVERT_S3_ENDPOINT"),
			UsePathStyle: flag("CONVERT_S3_USE_PATH_STYLE", false),
		},
		LedgerPath: getenv("CONVERT_LEDGER_PATH"),
	}.WithDefaults()
}
