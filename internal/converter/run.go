package converter

import (
	"context"
	"fmt"

	"convert-json-to-parquet/internal/job"
	"convert-json-to-parquet/internal/jobargs"
)

// RunJob runs the converter inside the job lifecycle: Init, Run, then
// Commit on success or Fail on error. The run error is returned as is.
func RunJob(ctx context.Context, j *job.Job, args jobargs.Args, c *Converter) (Result, error) {
	if err := j.Init(ctx, args.Get(jobargs.JobName), args); err != nil {
		return Result{}, fmt.Errorf("initializing job: %w", err)
	}
	c.log = j.Logger()

	res, err := c.Run(ctx)
	if err != nil {
		if ferr := j.Fail(ctx, err); ferr != nil {
			c.log.Warnw("could not record job failure", "error", ferr)
		}
		return res, err
	}

	if err := j.Commit(ctx, job.Stats{Records: res.Records, Files: len(res.Files)}); err != nil {
		err = fmt.Errorf("committing job: %w", err)
		if ferr := j.Fail(ctx, err); ferr != nil {
			c.log.Warnw("could not record job failure", "error", ferr)
		}
		return res, err
	}
	return res, nil
}
