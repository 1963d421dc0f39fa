// Package job tracks the lifecycle of one conversion run: Init assigns a
// run id and records the start, Commit or Fail records the outcome.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"convert-json-to-parquet/internal/jobargs"
)

// ErrState is returned for lifecycle calls made out of order.
var ErrState = errors.New("invalid job state")

type state int

const (
	stateNew state = iota
	stateRunning
	stateDone
)

// Stats is what a successful run reports on Commit.
type Stats struct {
	Records int64
	Files   int
}

// Job is the lifecycle of a single run. It is not reusable.
type Job struct {
	ledger Ledger
	log    *zap.SugaredLogger
	now    func() time.Time

	mu    sync.Mutex
	state state
	run   Run
}

// New creates a job that records its run in ledger (NopLedger if nil).
func New(ledger Ledger, log *zap.SugaredLogger) *Job {
	if ledger == nil {
		ledger = NopLedger{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Job{ledger: ledger, log: log, now: time.Now}
}

// Init starts the run. It may be called once.
func (j *Job) Init(ctx context.Context, name string, args jobargs.Args) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != stateNew {
		return fmt.Errorf("%w: init called twice", ErrState)
	}
	if name == "" {
		return fmt.Errorf("%w: empty job name", jobargs.ErrMissing)
	}

	j.run = Run{
		ID:        uuid.NewString(),
		JobName:   name,
		InputLoc:  args.Get(jobargs.InputLoc),
		OutputLoc: args.Get(jobargs.OutputLoc),
		Status:    StatusRunning,
		StartedAt: j.now().UTC(),
	}
	if err := j.ledger.Begin(ctx, j.run); err != nil {
		return err
	}
	j.state = stateRunning
	j.log = j.log.With("job", name, "run_id", j.run.ID)
	j.log.Infow("job started", "input", j.run.InputLoc, "output", j.run.OutputLoc, "args", args.Names())
	return nil
}

// Commit marks the run succeeded.
func (j *Job) Commit(ctx context.Context, stats Stats) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != stateRunning {
		return fmt.Errorf("%w: commit without a running job", ErrState)
	}
	if err := j.finish(ctx, StatusSucceeded, stats, ""); err != nil {
		return err
	}
	j.log.Infow("job committed", "records", stats.Records, "files", stats.Files)
	return nil
}

// Fail marks the run failed with cause.
func (j *Job) Fail(ctx context.Context, cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != stateRunning {
		return fmt.Errorf("%w: fail without a running job", ErrState)
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := j.finish(ctx, StatusFailed, Stats{}, msg); err != nil {
		return err
	}
	j.log.Errorw("job failed", "error", msg)
	return nil
}

// finish records the outcome in the ledger. The job stays running if the
// ledger write fails, so the outcome can still be recorded by Fail.
func (j *Job) finish(ctx context.Context, status Status, stats Stats, msg string) error {
	t := j.now().UTC()
	run := j.run
	run.Status = status
	run.Records = stats.Records
	run.Files = stats.Files
	run.Error = msg
	run.FinishedAt = &t
	if err := j.ledger.Finish(ctx, run); err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	j.run = run
	j.state = stateDone
	return nil
}

// Run returns a snapshot of the run as recorded so far.
func (j *Job) Run() Run {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.run
}

// Logger returns the job-scoped logger.
func (j *Job) Logger() *zap.SugaredLogger {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.log
}
