// Package scheduler drives the periodic standings refresh. It owns a
// single background goroutine with an explicit stop signal and join,
// instead of shared mutable running flags.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
	"github.com/biplovsubedi/prediction-league/internal/usecase"
)

type SyncRunner interface {
	Run(ctx context.Context, season string) (usecase.SyncResult, error)
}

type Scheduler struct {
	runner   SyncRunner
	season   string
	interval time.Duration
	logger   *logging.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func New(runner SyncRunner, season string, interval time.Duration, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}

	return &Scheduler{
		runner:   runner,
		season:   season,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the loop. Calling Start on a running scheduler is a
// logged no-op. The first tick fires immediately rather than one
// interval in.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		s.logger.Warn("scheduler already running")
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	s.logger.Info("scheduler started", "interval", s.interval.String())
}

// Stop signals the loop and blocks until it exits. Stopping a stopped
// scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stop != nil
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs one orchestration cycle. A failed or panicking run is
// logged and the loop keeps its schedule.
func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled sync panicked", "panic", fmt.Sprintf("%v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	result, err := s.runner.Run(ctx, s.season)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled sync failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scheduled sync finished", "status", result.Status, "season", result.Season)
}
