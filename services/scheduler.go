package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/football-tournaments/repositories"
)

const DefaultSchedulerInterval = 30 * time.Second

type schedulerJob struct {
	name string
	run  func(ctx context.Context) (int64, error)
}

// Scheduler периодически двигает статусы турниров по датам, помечает
// просроченные приглашения и чистит отозванные токены.
type Scheduler struct {
	jobs     []schedulerJob
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(
	tournaments TournamentService,
	invitations InvitationService,
	revokedRepo repositories.RevokedTokenRepository,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultSchedulerInterval
	}
	return &Scheduler{
		interval: interval,
		logger:   logger,
		jobs: []schedulerJob{
			{name: "tournament_statuses", run: func(ctx context.Context) (int64, error) {
				n, err := tournaments.AutoUpdateTournamentStatusesByDates(ctx)
				return int64(n), err
			}},
			{name: "invitation_expiry", run: invitations.ExpirePending},
			{name: "revoked_tokens", run: func(ctx context.Context) (int64, error) {
				return revokedRepo.PurgeExpired(ctx, time.Now())
			}},
		},
	}
}

// Run выполняет задачи сразу и затем по тикеру, пока ctx не отменён.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		n, err := job.run(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "scheduler: job failed", slog.String("job", job.name), slog.Any("error", err))
			continue
		}
		if n > 0 {
			s.logger.InfoContext(ctx, "scheduler: job done", slog.String("job", job.name), slog.Int64("affected", n))
		}
	}
}
