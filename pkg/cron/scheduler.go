// Package cron runs the bot's periodic jobs on cron schedules.
package cron

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/latoulicious/ideaboard/pkg/logging"
)

// Scheduler runs named jobs. A job that is still running when its next
// tick arrives is skipped for that tick.
type Scheduler struct {
	cron   *cron.Cron
	logger logging.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
	running map[string]bool
}

// NewScheduler creates a scheduler accepting six-field schedules (with seconds)
// as well as descriptors such as "@every 5m"
func NewScheduler(logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
		running: make(map[string]bool),
	}
}

// AddJob schedules fn under name
func (s *Scheduler) AddJob(name, schedule string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %q already scheduled", name)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("schedule job %q: %w", name, err)
	}
	s.entries[name] = id

	s.logger.Info("Scheduled job", logging.String("job", name), logging.String("schedule", schedule))
	return nil
}

// RunNow runs a job immediately, outside its schedule
func (s *Scheduler) RunNow(name string, fn func() error) {
	s.run(name, fn)
}

func (s *Scheduler) run(name string, fn func() error) {
	s.mu.Lock()
	if s.running[name] {
		s.mu.Unlock()
		s.logger.Debug("Job already in progress, skipping", logging.String("job", name))
		return
	}
	s.running[name] = true
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked", logging.String("job", name), logging.Any("panic", r))
		}
		s.mu.Lock()
		s.running[name] = false
		s.mu.Unlock()
	}()

	start := time.Now()
	if err := fn(); err != nil {
		s.logger.Warn("Job failed", logging.String("job", name), logging.Error(err))
		return
	}
	s.logger.Debug("Job completed", logging.String("job", name), logging.Duration("elapsed", time.Since(start)))
}

// Start starts the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// NextRun returns the next scheduled run of a job, zero if unknown or not started
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// IsRunning reports whether a job is currently executing
func (s *Scheduler) IsRunning(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[name]
}

// Jobs returns the number of scheduled jobs
func (s *Scheduler) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
