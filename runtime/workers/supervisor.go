package workers

import (
	"context"
	"fmt"
	"log/slog"
	"roomchat/contract"
	"roomchat/errors"
	"sync"
	"time"
)

const defaultRestartInterval = 200 * time.Millisecond

// Supervisor runs background workers of the chat process (domain event
// fanout, store maintenance, health probes) each in its own goroutine.
// A worker returning nil is done for good. A worker that errors or panics is
// restarted after the restart interval, until the context is canceled.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
	stopped         bool
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{log: log, restartInterval: restartInterval}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every registered worker and blocks until all of them returned.
// Canceling ctx, or calling Stop, stops them all.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	if s.stopped {
		cancel()
	}
	workers := append([]contract.Worker(nil), s.workers...)
	s.mu.Unlock()
	defer cancel()

	for _, worker := range workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start runs one worker under supervision.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	name := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for attempt := 1; ; attempt++ {
			if ctx.Err() != nil {
				s.log.Info("Worker stopping", "name", name)
				return
			}

			err := s.runOnce(ctx, worker)
			if err == nil {
				s.log.Info("Worker finished", "name", name)
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", name)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
			}
		}
	}()
}

func (s *Supervisor) runOnce(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels the workers started by Run. Run returns once they are done.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.stopped = true
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
