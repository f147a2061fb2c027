package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/cecbur/RebtelAssignment-sub000/queries/shell"
)

const defaultWarmConcurrency = 4

var (
	// ErrInvalidSchedule is returned for a schedule that is not a standard 5 field cron expression.
	ErrInvalidSchedule = errors.New("invalid warm schedule")

	// ErrInvalidWarmJob is returned when a job without a name or function is registered.
	ErrInvalidWarmJob = errors.New("warm job needs a name and a function")

	// ErrDuplicateWarmJob is returned when a job name is registered twice.
	ErrDuplicateWarmJob = errors.New("warm job already registered")

	// ErrWarmerStarted is returned when jobs are registered or the warmer is started after Start.
	ErrWarmerStarted = errors.New("warmer already started")
)

// WarmJob refreshes one cached result.
type WarmJob func(ctx context.Context) error

// Refresher returns a WarmJob that refreshes the cached result of query in wrapper.
func Refresher[Q shell.Query, R shell.QueryResult](wrapper *QueryWrapper[Q, R], query Q) WarmJob {
	return func(ctx context.Context) error {
		_, err := wrapper.Refresh(ctx, query)
		return err
	}
}

type namedJob struct {
	name string
	run  WarmJob
}

// Warmer runs registered WarmJobs on a cron schedule.
type Warmer struct {
	mu          sync.Mutex
	schedule    cron.Schedule
	scheduler   *cron.Cron
	jobs        []namedJob
	timeout     time.Duration
	concurrency int
	log         loggers
	started     bool
	retry       *warmRetry
}

type warmRetry struct {
	collector shell.MetricsCollector
	options   []shell.RetryOption
}

// NewWarmer creates a Warmer for a standard cron expression, e.g. "*/15 * * * *".
func NewWarmer(schedule string, opts ...WarmerOption) (*Warmer, error) {
	parsed, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}

	w := &Warmer{
		schedule:    parsed,
		scheduler:   cron.New(),
		concurrency: defaultWarmConcurrency,
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Register adds a job. Jobs cannot be added once the warmer is started.
func (w *Warmer) Register(name string, job WarmJob) error {
	if name == "" || job == nil {
		return ErrInvalidWarmJob
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrWarmerStarted
	}

	for _, registered := range w.jobs {
		if registered.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateWarmJob, name)
		}
	}

	w.jobs = append(w.jobs, namedJob{name: name, run: job})

	return nil
}

// Jobs returns the names of the registered jobs in registration order.
func (w *Warmer) Jobs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	names := make([]string, 0, len(w.jobs))
	for _, job := range w.jobs {
		names = append(names, job.name)
	}

	return names
}

// RunAll runs every registered job once. A failing job does not stop the others;
// the returned error joins the errors of all failed jobs.
func (w *Warmer) RunAll(ctx context.Context) error {
	w.mu.Lock()
	jobs := append([]namedJob(nil), w.jobs...)
	w.mu.Unlock()

	var (
		failuresMu sync.Mutex
		failures   []error
	)

	g := new(errgroup.Group)
	g.SetLimit(w.concurrency)

	for _, job := range jobs {
		g.Go(func() error {
			if err := w.runJob(ctx, job); err != nil {
				w.log.warn(ctx, logMsgWarmFailed, logAttrJob, job.name, shell.LogAttrError, err.Error())

				failuresMu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", job.name, err))
				failuresMu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	w.log.info(ctx, logMsgWarmCompleted, logAttrJobs, len(jobs), logAttrFailed, len(failures))

	return errors.Join(failures...)
}

// Start schedules RunAll and starts the scheduler in its own goroutine.
func (w *Warmer) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrWarmerStarted
	}

	w.scheduler.Schedule(w.schedule, cron.FuncJob(func() {
		_ = w.RunAll(context.Background())
	}))
	w.scheduler.Start()
	w.started = true

	return nil
}

// Stop stops the scheduler. The returned context is done once running jobs have completed.
func (w *Warmer) Stop() context.Context {
	return w.scheduler.Stop()
}

// Next returns the next scheduled run after t.
func (w *Warmer) Next(t time.Time) time.Time {
	return w.schedule.Next(t)
}

func (w *Warmer) runJob(ctx context.Context, job namedJob) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if w.retry == nil {
		return job.run(ctx)
	}

	options := w.retry.options
	if w.retry.collector != nil {
		options = append(options[:len(options):len(options)], shell.WithRetryMetrics(w.retry.collector, "warm:"+job.name))
	}

	_, err := shell.RetryWithExponentialBackoff(ctx, shell.RetryableFunc(job.run), options...)

	return err
}

// WarmerOption defines a functional option for configuring Warmer.
type WarmerOption func(*Warmer) error

// WithJobTimeout bounds the runtime of each job. Zero means no bound.
func WithJobTimeout(timeout time.Duration) WarmerOption {
	return func(w *Warmer) error {
		if timeout < 0 {
			return errors.New("warm job timeout must not be negative")
		}

		w.timeout = timeout

		return nil
	}
}

// WithConcurrency sets how many jobs run at the same time.
func WithConcurrency(n int) WarmerOption {
	return func(w *Warmer) error {
		if n <= 0 {
			return errors.New("warm concurrency must be greater than zero")
		}

		w.concurrency = n

		return nil
	}
}

// WithWarmerLogging sets the basic logger for job failures and run summaries.
func WithWarmerLogging(logger shell.Logger) WarmerOption {
	return func(w *Warmer) error {
		w.log.logger = logger
		return nil
	}
}

// WithWarmerContextualLogging sets the contextual logger for job failures and run summaries.
func WithWarmerContextualLogging(logger shell.ContextualLogger) WarmerOption {
	return func(w *Warmer) error {
		w.log.contextualLogger = logger
		return nil
	}
}

// WithRetry retries jobs that fail with a transient error, see shell.IsTransientError.
// Retry metrics are labeled with the operation "warm:<job name>" when collector is not nil.
func WithRetry(collector shell.MetricsCollector, opts ...shell.RetryOption) WarmerOption {
	return func(w *Warmer) error {
		noop := func(context.Context) error { return nil }
		if _, err := shell.RetryWithExponentialBackoff(context.Background(), noop, opts...); err != nil {
			return err
		}

		w.retry = &warmRetry{collector: collector, options: opts}

		return nil
	}
}
