package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"imgcrush/internal/display"
	"imgcrush/internal/logging"
	"imgcrush/internal/strategy"
)

// Run compresses jobs and returns the aggregated stats. With one worker the
// jobs run sequentially in order; otherwise a pool of opts.Workers runs them
// concurrently and a single collector folds every outcome. Run returns only
// after every started job reached a terminal outcome. Cancelling ctx stops
// new jobs from starting; jobs already running finish.
func Run(ctx context.Context, jobs []Job, opts Options, updates chan<- ProgressUpdate) (Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()

	stats := Stats{Total: len(jobs)}
	if updates != nil {
		updates <- ProgressUpdate{TotalDelta: len(jobs)}
	}

	fold := func(o Outcome) {
		logOutcome(opts.Log, o)
		u := stats.Record(o)
		if updates != nil {
			updates <- u
		}
	}

	if opts.Workers <= 1 {
		for _, job := range jobs {
			if ctx.Err() != nil {
				break
			}
			fold(processJob(ctx, job, opts))
		}
		return stats.Snapshot(), ctxErr(ctx)
	}

	jobCh := make(chan Job)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, jobCh, results, opts)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for o := range results {
			fold(o)
		}
	}()

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	return stats.Snapshot(), ctxErr(ctx)
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	if o.Table == nil {
		o.Table = strategy.DefaultTable()
	}
	return o
}

func worker(ctx context.Context, jobs <-chan Job, results chan<- Outcome, opts Options) {
	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- processJob(ctx, job, opts)
	}
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// processJob runs one file through strategy selection, backup, compression
// and commit. Every error becomes a terminal Outcome.
func processJob(ctx context.Context, job Job, opts Options) Outcome {
	opts = opts.withDefaults()
	out := Outcome{Job: job}

	info, err := os.Stat(job.Path)
	if err != nil {
		return failed(out, fmt.Errorf("%w: %v", ErrSourceAccess, err))
	}
	if !info.Mode().IsRegular() {
		return failed(out, fmt.Errorf("%w: not a regular file", ErrSourceAccess))
	}
	out.OriginalSize = info.Size()

	plan, err := opts.Table.Select(job.Kind, opts.Tools)
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return skipped(out, ReasonUnsupported, err)
	case err != nil:
		return skipped(out, ReasonNoOutput, err)
	}

	if err := opts.Backup.Ensure(job.Path); err != nil {
		return failed(out, err)
	}

	s, err := newScratch(opts.ScratchDir, job.Path)
	if err != nil {
		return failed(out, err)
	}
	defer s.remove()

	if err := execute(ctx, job, plan, opts.Registry, s, opts.Log); err != nil {
		reason := ReasonNoOutput
		var kindErr *outputKindError
		if errors.As(err, &kindErr) {
			reason = ReasonBadOutput
		}
		return skipped(out, reason, err)
	}

	return commit(job, s, out.OriginalSize)
}

func skipped(o Outcome, reason string, err error) Outcome {
	o.Status = StatusSkipped
	o.Reason = reason
	o.Err = err
	return o
}

func failed(o Outcome, err error) Outcome {
	o.Status = StatusFailed
	o.Err = err
	return o
}

func logOutcome(log *logging.Logger, o Outcome) {
	switch o.Status {
	case StatusCompressed:
		log.Success("✓ compressed: %s (%s → %s, -%.1f%%)",
			o.Job.Display,
			display.FormatSize(o.OriginalSize),
			display.FormatSize(o.NewSize),
			display.Reduction(o.OriginalSize, o.NewSize))
	case StatusSkipped:
		switch {
		case errors.Is(o.Err, ErrNotSmaller):
			log.Info("○ skipped: %s (%s)", o.Job.Display, o.Reason)
		case errors.Is(o.Err, ErrUnsupportedFormat):
			log.Info("○ skipped: %s (%s)", o.Job.Display, o.Reason)
		default:
			log.Warn("○ skipped: %s (%s): %v", o.Job.Display, o.Reason, o.Err)
		}
	default:
		log.Error("✗ failed: %s: %v", o.Job.Display, o.Err)
	}
}
