package generate

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/gopreserve/internal/logging"
)

// Runner merges every file of a staging directory using a Pipeline.
type Runner struct {
	Pipeline *Pipeline
}

// NewRunner creates a new Runner with the given pipeline.
func NewRunner(pipeline *Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers the staged files and processes them concurrently.
// The outcomes are ordered by relative path regardless of completion order.
// Merging only reads registry state, so workers share one registry.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	jobs, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Slot:  opts.Slot,
		Files: make([]FileOutcome, 0, len(jobs)),
	}
	result.Stats.FilesDiscovered = len(jobs)

	if len(jobs) == 0 {
		return result, nil
	}

	workers := opts.Jobs
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	workCh := make(chan Job)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, opts)
		}()
	}

	go func() {
		defer close(workCh)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case workCh <- job:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(jobs))
	for outcome := range outCh {
		outcomes[outcome.Job.RelPath] = outcome
	}

	for _, job := range jobs {
		if outcome, ok := outcomes[job.RelPath]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	logging.FromContext(ctx).Debug("merged staging directory",
		logging.FieldPath, opts.StagingDir,
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesWritten, result.Stats.FilesWritten,
		logging.FieldFilesUnchanged, result.Stats.FilesUnchanged,
		logging.FieldFilesErrored, result.Stats.FilesErrored)

	return result, nil
}

func (r *Runner) worker(ctx context.Context, workCh <-chan Job, outCh chan<- FileOutcome, opts Options) {
	for job := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := FileOutcome{Job: job}

		fr, err := r.Pipeline.ProcessFile(ctx, job, opts)
		if err != nil {
			outcome.Error = err
		} else {
			outcome.Result = fr
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}
