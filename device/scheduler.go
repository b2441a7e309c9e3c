package device

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler owns all periodic background tasks as named, individually
// cancellable tickers. Starting a run starts exactly the status poll; stopping
// it stops exactly that poll, deterministically.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:  make(map[string]context.CancelFunc),
		logger: logger.With("component", "scheduler"),
	}
}

// Start registers and runs a named periodic task. Starting a name that is
// already running replaces the previous task. The function receives a context
// that is cancelled when the task stops.
func (s *Scheduler) Start(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	if cancel, ok := s.tasks[name]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.tasks[name] = cancel
	s.mu.Unlock()

	s.logger.Info("Starting periodic task", "task", name, "interval", interval.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// Stop cancels a named task. Stopping an unknown name is a no-op.
func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	cancel, ok := s.tasks[name]
	if ok {
		delete(s.tasks, name)
	}
	s.mu.Unlock()

	if ok {
		cancel()
		s.logger.Info("Stopped periodic task", "task", name)
	}
}

// IsRunning reports whether a named task is active.
func (s *Scheduler) IsRunning(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[name]
	return ok
}

// Shutdown cancels every task and waits for their goroutines to exit.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	for name, cancel := range s.tasks {
		cancel()
		delete(s.tasks, name)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}
