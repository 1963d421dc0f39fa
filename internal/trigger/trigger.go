// Package trigger runs a conversion job for every object reported by an
// S3 event notification.
package trigger

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"convert-json-to-parquet/internal/converter"
	"convert-json-to-parquet/internal/job"
	"convert-json-to-parquet/internal/jobargs"
	"convert-json-to-parquet/pkg/types"
)

// ConverterFactory builds the converter for one job configuration.
type ConverterFactory func(ctx context.Context, cfg types.JobConfig) (*converter.Converter, error)

// Handler converts each object named in an S3 event.
type Handler struct {
	// Base supplies everything except the input location.
	Base types.JobConfig
	// Lookup resolves JOB_NAME and OUTPUT_LOC.
	Lookup jobargs.Lookup
	// NewConverter defaults to converter.NewFromConfig.
	NewConverter ConverterFactory
	// Ledger records every run; nil uses job.NopLedger.
	Ledger job.Ledger
	Log    *zap.SugaredLogger
}

// Handle processes the event records in order and stops at the first failure.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) error {
	log := h.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	newConverter := h.NewConverter
	if newConverter == nil {
		newConverter = func(ctx context.Context, cfg types.JobConfig) (*converter.Converter, error) {
			return converter.NewFromConfig(ctx, cfg, log)
		}
	}

	base, err := jobargs.Resolve(h.Lookup, jobargs.JobName, jobargs.OutputLoc)
	if err != nil {
		return err
	}

	for _, rec := range event.Records {
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return fmt.Errorf("decoding object key %q: %w", rec.S3.Object.Key, err)
		}
		input := "s3://" + rec.S3.Bucket.Name + "/" + key

		args := jobargs.Args{
			jobargs.JobName:   base.Get(jobargs.JobName),
			jobargs.InputLoc:  input,
			jobargs.OutputLoc: base.Get(jobargs.OutputLoc),
		}

		cfg := h.Base
		cfg.JobName = args.Get(jobargs.JobName)
		cfg.InputLoc = input
		cfg.OutputLoc = args.Get(jobargs.OutputLoc)

		c, err := newConverter(ctx, cfg)
		if err != nil {
			return fmt.Errorf("preparing conversion of %s: %w", input, err)
		}

		res, err := converter.RunJob(ctx, job.New(h.Ledger, log), args, c)
		if err != nil {
			return fmt.Errorf("converting %s: %w", input, err)
		}
		log.Infow("event object converted", "input", input, "records", res.Records, "files", len(res.Files))
	}
	return nil
}
