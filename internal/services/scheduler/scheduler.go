// Package scheduler периодически проверяет активные подписки на просрочку.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/software-billing/internal/lib/sl"
)

// Sweeper деактивирует подписки, у которых закрылось окно оплаты.
type Sweeper interface {
	SweepLapsed(ctx context.Context, now time.Time) (int, error)
}

// SchedulerService запускает проверку сразу при старте и затем по тикеру.
type SchedulerService struct {
	sweeper  Sweeper
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(sweeper Sweeper, interval time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		sweeper:  sweeper,
		interval: interval,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run выполняет проверки до отмены контекста.
func (s *SchedulerService) Run(ctx context.Context) {
	s.runSweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *SchedulerService) runSweep(ctx context.Context) {
	s.log.Info("starting sweep of lapsed subscriptions")
	lapsed, err := s.sweeper.SweepLapsed(ctx, s.now())
	if err != nil {
		s.log.Error("sweep finished with errors", slog.Int("lapsed", lapsed), sl.Err(err))
		return
	}
	if lapsed == 0 {
		s.log.Info("no lapsed subscriptions found")
		return
	}
	s.log.Info("lapsed subscriptions deactivated", slog.Int("count", lapsed))
}
