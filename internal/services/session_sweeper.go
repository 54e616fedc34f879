package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/repository"
)

// SweeperConfig controls how often expired sessions are purged.
type SweeperConfig struct {
	Interval time.Duration
}

// SessionSweeper deletes expired sessions from stores without native TTLs.
type SessionSweeper struct {
	store  repository.SessionSweeper
	logger *zap.Logger
	cron   *cron.Cron
	cfg    SweeperConfig
	now    func() time.Time
}

func NewSessionSweeper(store repository.SessionSweeper, logger *zap.Logger, cfg SweeperConfig) *SessionSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SessionSweeper{
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("session sweep failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *SessionSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.Duration("interval", s.cfg.Interval))
}

// Stop waits for a running sweep or ctx, whichever ends first.
func (s *SessionSweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("session sweeper stopped")
}

// Sweep removes every session that has expired by now.
func (s *SessionSweeper) Sweep(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", zap.Int("count", removed))
	}
	return removed, nil
}
