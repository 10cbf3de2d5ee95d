// Package scheduler drives periodic collection cycles. A cycle takes one
// snapshot and persists it. The interval is measured from the end of one
// cycle to the start of the next, so a slow cycle delays the following one
// instead of stacking up behind it.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/statline/statline/internal/models"
)

// Collector produces one metrics record per call.
type Collector interface {
	Collect(ctx context.Context) (*models.MetricsRecord, error)
}

// RecordStore persists collected records.
type RecordStore interface {
	Insert(ctx context.Context, rec *models.MetricsRecord) error
}

// State is the scheduler lifecycle state.
type State int

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Scheduler runs collection cycles at a configurable interval.
type Scheduler struct {
	collector Collector
	store     RecordStore
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	interval time.Duration
	lastRun  *time.Time
	lastErr  error
	cycles   uint64
	failures uint64
	stopCh   chan struct{}
	done     chan struct{}

	// cycleMu serializes cycles: the loop holds it for scheduled runs and
	// RunOnce try-locks it for manual ones, so cycles never overlap.
	cycleMu sync.Mutex
}

// New creates a scheduler. The interval must be positive.
func New(collector Collector, store RecordStore, interval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %s", models.ErrInvalidArgument, interval)
	}
	return &Scheduler{
		collector: collector,
		store:     store,
		interval:  interval,
		logger:    logger,
	}, nil
}

// Start launches the collection loop. The first cycle runs immediately.
// It reports false when the scheduler is already running or still stopping.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStopped {
		return false
	}
	s.state = StateRunning
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stopCh, s.done)
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	return true
}

// Stop halts the loop and blocks until any in-flight cycle has finished.
// It reports false when the scheduler is not running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return false
	}
	s.state = StateStopping
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
	s.logger.Info("Scheduler stopped")
	return true
}

// Configure changes the interval. The new value takes effect when the next
// cycle is scheduled; a wait already in progress keeps the old interval.
func (s *Scheduler) Configure(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", models.ErrInvalidArgument, interval)
	}
	s.mu.Lock()
	old := s.interval
	s.interval = interval
	s.mu.Unlock()
	s.logger.Info("Scheduler interval updated",
		zap.Duration("from", old),
		zap.Duration("to", interval))
	return nil
}

// RunOnce executes a single cycle immediately, regardless of scheduler
// state, and returns the stored record. When another cycle is in flight it
// rejects with models.ErrBusy instead of queueing behind it.
func (s *Scheduler) RunOnce(ctx context.Context) (*models.MetricsRecord, error) {
	if !s.cycleMu.TryLock() {
		return nil, fmt.Errorf("%w: a collection cycle is already in flight", models.ErrBusy)
	}
	defer s.cycleMu.Unlock()
	return s.cycle(ctx)
}

// Status returns a read-only snapshot of scheduler state and counters.
func (s *Scheduler) Status() models.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := models.SchedulerStatus{
		State:           s.state.String(),
		Running:         s.state == StateRunning,
		IntervalSeconds: int(s.interval / time.Second),
		Cycles:          s.cycles,
		Failures:        s.failures,
	}
	if s.lastRun != nil {
		t := *s.lastRun
		status.LastRunAt = &t
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// run executes cycles until stop is closed. Each iteration arms a fresh
// timer after the cycle completes, so the interval spans end-to-start.
func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		default:
		}

		s.runScheduled()

		s.mu.Lock()
		interval := s.interval
		s.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runScheduled executes one cycle under the cycle lock. Failures are logged
// and recorded, never propagated: the loop must outlive them.
func (s *Scheduler) runScheduled() {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	// Cycles run on a background context so stopping the scheduler cancels
	// only the wait between cycles, never a snapshot already being written.
	if _, err := s.cycle(context.Background()); err != nil {
		s.logger.Warn("Collection cycle failed", zap.Error(err))
	}
}

// cycle collects one record and persists it. Callers must hold cycleMu.
func (s *Scheduler) cycle(ctx context.Context) (*models.MetricsRecord, error) {
	rec, err := s.collector.Collect(ctx)
	if err == nil {
		err = s.store.Insert(ctx, rec)
	}

	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	if err != nil {
		s.failures++
		s.lastErr = err
		return nil, err
	}
	s.lastRun = &now
	s.lastErr = nil

	s.logger.Debug("Collected metrics",
		zap.String("id", rec.ID),
		zap.Time("timestamp", rec.Timestamp))
	return rec, nil
}
