// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/quillnotes/quill/pkg/errutil"
)

// DefaultSweepInterval is how often expired sessions are purged when the
// configuration does not override it.
const DefaultSweepInterval = time.Hour

// sessionSweeper is the part of SessionManager the sweeper needs.
type sessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically deletes expired sessions. It is owned by the serve
// command's lifecycle: started at boot, stopped at shutdown. It may race
// with request-time validation; that is safe because Validate re-checks
// expiry itself.
type Sweeper struct {
	manager  sessionSweeper
	interval time.Duration
	logger   *slog.Logger
	onSwept  func(count int64)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a Sweeper. interval <= 0 falls back to
// DefaultSweepInterval. onSwept, if non-nil, is invoked with the number of
// sessions removed by each cycle (used for metrics).
func NewSweeper(manager sessionSweeper, interval time.Duration, onSwept func(count int64)) (*Sweeper, error) {
	if manager == nil {
		return nil, oops.Code("SWEEPER_INVALID").Errorf("session manager is required")
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		manager:  manager,
		interval: interval,
		logger:   slog.Default(),
		onSwept:  onSwept,
	}, nil
}

// RunOnce executes a single sweep cycle.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	deleted, err := s.manager.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if s.onSwept != nil {
		s.onSwept(deleted)
	}
	if deleted > 0 {
		s.logger.Info("swept expired sessions", "deleted", deleted)
	}
	return nil
}

// Start begins periodic sweeping. The first cycle runs immediately.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the sweeper and waits for the in-flight cycle to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.RunOnce(ctx); err != nil {
		errutil.LogError(s.logger, "session sweep failed", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				errutil.LogError(s.logger, "session sweep failed", err)
			}
		}
	}
}
