package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/switchboard/internal/jobs"
)

// Logger defines the logging interface used by the Scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher sends a job's action when it fires. The MQTT client
// implements this; tests use mocks.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Telemetry receives optional job-firing events. May be nil.
type Telemetry interface {
	WriteJobFiring(kind string, topic string)
}

// Scheduler holds timer registrations and fires due jobs on poll ticks.
//
// It implements jobs.Registrar: the Store mirrors every job mutation
// into the Scheduler so registrations always match stored jobs. Jobs
// fire only on tick boundaries, so the tick interval bounds precision.
//
// Firing is decoupled from registration bookkeeping: due jobs are
// collected and advanced under the lock, then published outside it,
// so a publish can never block Register or Cancel and a once job's
// synchronous self-delete cannot deadlock.
type Scheduler struct {
	mu   sync.Mutex
	regs map[jobs.Key]*registration

	publisher Publisher
	qos       byte
	logger    Logger
	telemetry Telemetry

	// onOnceFired is invoked synchronously after a once job's action
	// is published. The hub wires this to the store's DeleteOne so
	// the job disappears before the next tick.
	onOnceFired func(key jobs.Key)

	// now is a clock hook for tests.
	now func() time.Time
}

// registration tracks one job's next firing time.
type registration struct {
	job     jobs.Job
	nextRun time.Time
}

// New creates a scheduler publishing job actions at the given QoS.
func New(publisher Publisher, qos byte) *Scheduler {
	return &Scheduler{
		regs:      make(map[jobs.Key]*registration),
		publisher: publisher,
		qos:       qos,
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.logger = logger
}

// SetTelemetry sets an optional sink for job-firing events.
func (s *Scheduler) SetTelemetry(t Telemetry) {
	s.telemetry = t
}

// SetOnOnceFired sets the callback invoked after a once job fires.
func (s *Scheduler) SetOnOnceFired(fn func(key jobs.Key)) {
	s.onOnceFired = fn
}

// Register adds a timer registration for the job and computes its
// first firing time. Implements jobs.Registrar.
func (s *Scheduler) Register(job jobs.Job) error {
	next, err := s.firstRun(job, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[job.Key()] = &registration{job: job, nextRun: next}
	return nil
}

// Cancel removes the registration for the key, reporting whether one
// existed. Implements jobs.Registrar.
func (s *Scheduler) Cancel(key jobs.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[key]; !ok {
		return false
	}
	delete(s.regs, key)
	return true
}

// CancelAll removes every registration. Implements jobs.Registrar.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.regs)
	s.regs = make(map[jobs.Key]*registration)
	return n
}

// Count returns the number of active registrations.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs)
}

// Run polls for due jobs at the given tick interval until the context
// is cancelled. Call from its own goroutine.
func (s *Scheduler) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "tick", tick.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunPending(s.now())
		}
	}
}

// RunPending fires every job due at or before now. Exported so tests
// can drive the scheduler with a simulated clock.
func (s *Scheduler) RunPending(now time.Time) {
	due := s.collectDue(now)

	for _, job := range due {
		s.fire(job)
	}
}

// collectDue gathers due jobs and advances their next firing times
// under the lock. Once jobs are deregistered here so they cannot fire
// twice regardless of poll frequency.
func (s *Scheduler) collectDue(now time.Time) []jobs.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []jobs.Job
	for key, reg := range s.regs {
		if reg.nextRun.After(now) {
			continue
		}
		due = append(due, reg.job)

		switch reg.job.Kind {
		case jobs.KindInterval:
			reg.nextRun = now.Add(time.Duration(reg.job.Time.IntervalSeconds()) * time.Second)
		case jobs.KindDaily:
			reg.nextRun = reg.nextRun.Add(24 * time.Hour)
		case jobs.KindOnce:
			delete(s.regs, key)
		}
	}
	return due
}

// fire publishes one job's action. Runs outside the scheduler lock.
func (s *Scheduler) fire(job jobs.Job) {
	key := job.Key()

	err := s.publisher.Publish(job.Topic, []byte(job.Payload), s.qos, false)
	if err != nil {
		// Logged and dropped; jobs are never retried.
		s.logger.Error("publishing job action", "job", key.String(), "error", err)
	} else {
		s.logger.Info("job fired", "job", key.String())
	}

	if s.telemetry != nil {
		s.telemetry.WriteJobFiring(string(job.Kind), job.Topic)
	}

	if job.Kind == jobs.KindOnce && s.onOnceFired != nil {
		s.onOnceFired(key)
	}
}

// firstRun computes a job's first firing time relative to now.
func (s *Scheduler) firstRun(job jobs.Job, now time.Time) (time.Time, error) {
	switch job.Kind {
	case jobs.KindInterval:
		return now.Add(time.Duration(job.Time.IntervalSeconds()) * time.Second), nil
	case jobs.KindDaily, jobs.KindOnce:
		hour, minute, err := job.Time.ClockParts()
		if err != nil {
			return time.Time{}, err
		}
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		return next, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", jobs.ErrUnknownKind, job.Kind)
	}
}
