package jobs

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Store.
// This allows different logging implementations to be used.
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

// Registrar receives job registrations from the Store. The scheduler
// implements this; tests use mocks.
//
// Store methods call the Registrar while holding the store lock, so
// Registrar implementations must never call back into the Store.
type Registrar interface {
	// Register adds a timer registration for the job.
	Register(job Job) error

	// Cancel removes the registration for the key, reporting whether
	// one existed.
	Cancel(key Key) bool

	// CancelAll removes every registration and returns how many there were.
	CancelAll() int
}

// Store is the authoritative collection of persistent jobs.
//
// It owns the in-memory job list, keeps the persisted document in sync
// after every mutation, and mirrors each mutation into the Registrar
// so the scheduler's timer registrations always match the stored jobs.
//
// Persistence failures are logged, not propagated: the in-memory list
// stays authoritative until the next successful save or restart.
//
// All public methods are thread-safe.
type Store struct {
	mu        sync.Mutex
	jobs      []Job
	repo      Repository
	registrar Registrar
	logger    Logger
}

// NewStore creates a job store backed by the given repository and
// registrar.
func NewStore(repo Repository, registrar Registrar) *Store {
	return &Store{
		repo:      repo,
		registrar: registrar,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Load reads the persisted job list and registers every job with the
// registrar. Call once on startup, before connecting the transport.
//
// Jobs that no longer validate (hand-edited documents, older formats)
// are dropped with a warning rather than failing startup.
func (s *Store) Load(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading jobs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = s.jobs[:0]
	for _, job := range loaded {
		if err := job.Validate(); err != nil {
			s.logger.Warn("dropping invalid persisted job", "job", job.Key().String(), "error", err)
			continue
		}
		if err := s.registrar.Register(job); err != nil {
			s.logger.Warn("registering persisted job", "job", job.Key().String(), "error", err)
			continue
		}
		s.jobs = append(s.jobs, job)
	}

	s.logger.Info("job store loaded", "count", len(s.jobs))
	return nil
}

// Submit validates and stores a new job, registering it for scheduling.
//
// Returns ErrDuplicateJob when an identical (kind, topic, payload, time)
// tuple is already stored, or a validation error for malformed jobs.
func (s *Store) Submit(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := job.Key()
	for _, existing := range s.jobs {
		if existing.Key() == key {
			return fmt.Errorf("%w: %s", ErrDuplicateJob, key.String())
		}
	}

	if err := s.registrar.Register(job); err != nil {
		return fmt.Errorf("registering job: %w", err)
	}

	s.jobs = append(s.jobs, job)
	s.persist(ctx)

	s.logger.Info("job submitted", "job", key.String(), "total", len(s.jobs))
	return nil
}

// DeleteOne removes the job matching the key, if present, and cancels
// its registration. Returns how many jobs were removed (0 or 1);
// deleting an absent tuple is not an error.
func (s *Store) DeleteOne(ctx context.Context, key Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	kept := s.jobs[:0]
	for _, job := range s.jobs {
		if job.Key() == key {
			deleted++
			continue
		}
		kept = append(kept, job)
	}
	s.jobs = kept

	if deleted > 0 {
		s.registrar.Cancel(key)
		s.persist(ctx)
		s.logger.Info("job deleted", "job", key.String(), "remaining", len(s.jobs))
	}

	return deleted
}

// DeleteAll removes every job and cancels all registrations.
// Returns how many jobs were removed.
func (s *Store) DeleteAll(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := len(s.jobs)
	s.jobs = nil
	s.registrar.CancelAll()
	s.persist(ctx)

	s.logger.Info("all jobs deleted", "count", deleted)
	return deleted
}

// List returns a copy of the stored jobs in submission order.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Count returns the number of stored jobs.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// persist saves the current job list, logging failures without
// rolling back. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if err := s.repo.Save(ctx, s.jobs); err != nil {
		s.logger.Error("persisting jobs collection", "error", err, "count", len(s.jobs))
	}
}
