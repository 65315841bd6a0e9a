package usecase

import (
	"context"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"go.uber.org/zap"
)

type staleExpirer interface {
	ExpireAll(ctx context.Context) (int64, error)
}

// ExpirySweeper periodically expires stale listings of all authors.
type ExpirySweeper struct {
	listings staleExpirer
	interval time.Duration
	logger   *logger.Logger
}

func NewExpirySweeper(listings staleExpirer, interval time.Duration, log *logger.Logger) *ExpirySweeper {
	return &ExpirySweeper{listings: listings, interval: interval, logger: log.Named("expiry_sweeper")}
}

// Run sweeps every interval until ctx is done. A non-positive interval returns at once.
func (s *ExpirySweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Expiry sweeper disabled")
		return
	}
	s.logger.Info("Expiry sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) Sweep(ctx context.Context) {
	start := time.Now()
	n, err := s.listings.ExpireAll(ctx)
	if err != nil {
		s.logger.Error("Expiry sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("Expiry sweep completed",
		zap.Int64("expired_count", n),
		zap.Duration("duration", time.Since(start)))
}
