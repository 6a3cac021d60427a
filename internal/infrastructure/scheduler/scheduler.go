// Package scheduler runs periodic background jobs such as the expiry sweep.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrSchedulerRunning is returned when jobs are registered after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrInvalidInterval is returned for a non-positive job interval
	ErrInvalidInterval = errors.New("job interval must be positive")

	// ErrJobNotFound is returned by RunNow for an unregistered job
	ErrJobNotFound = errors.New("job not found")

	// ErrJobInProgress is returned by RunNow while the job is still running
	ErrJobInProgress = errors.New("job already in progress")
)

// Job is a unit of periodic work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name implements Job
func (f JobFunc) Name() string { return f.JobName }

// Run implements Job
func (f JobFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

type entry struct {
	job      Job
	interval time.Duration
	running  atomic.Bool
	runs     atomic.Int64
	failures atomic.Int64
}

// Scheduler runs each registered job on its own ticker. A tick that fires
// while the previous run is still going is skipped.
type Scheduler struct {
	timeout time.Duration
	logger  *zap.Logger

	mu        sync.Mutex
	entries   map[string]*entry
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// New creates a scheduler. timeout bounds every run; zero means no bound.
func New(timeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		timeout: timeout,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Register adds job to run every interval. It must be called before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%s: %w", job.Name(), ErrInvalidInterval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	s.entries[job.Name()] = &entry{job: job, interval: interval}
	return nil
}

// Start launches one loop per job. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, e)
	}
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.entries)))
	return nil
}

// Stop cancels the loops and waits for in-flight runs or ctx expiry
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes the named job synchronously, outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrJobNotFound)
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrJobInProgress
	}
	defer e.running.Store(false)
	return s.execute(ctx, e)
}

// Stats reports run and failure counts for the named job
func (s *Scheduler) Stats(name string) (runs, failures int64, ok bool) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	return e.runs.Load(), e.failures.Load(), true
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.running.CompareAndSwap(false, true) {
				s.logger.Warn("Skipping job run, previous run still in progress",
					zap.String("job", e.job.Name()))
				continue
			}
			_ = s.execute(ctx, e)
			e.running.Store(false)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, e *entry) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	e.runs.Add(1)
	err := e.job.Run(ctx)
	if err != nil {
		e.failures.Add(1)
		s.logger.Error("Scheduled job failed",
			zap.String("job", e.job.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("Scheduled job completed",
		zap.String("job", e.job.Name()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
