package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/storage"
)

const upcomingTournamentsLimit = 5

type DashboardService interface {
	GetStats(ctx context.Context, actor Actor) (models.DashboardStats, error)
}

type dashboardService struct {
	tournamentRepo   repositories.TournamentRepository
	clubRepo         repositories.ClubRepository
	registrationRepo repositories.RegistrationRepository
	notificationRepo repositories.NotificationRepository
	uploader         storage.FileUploader
	now              func() time.Time
}

func NewDashboardService(
	tournamentRepo repositories.TournamentRepository,
	clubRepo repositories.ClubRepository,
	registrationRepo repositories.RegistrationRepository,
	notificationRepo repositories.NotificationRepository,
	uploader storage.FileUploader,
) DashboardService {
	return &dashboardService{
		tournamentRepo:   tournamentRepo,
		clubRepo:         clubRepo,
		registrationRepo: registrationRepo,
		notificationRepo: notificationRepo,
		uploader:         uploader,
		now:              time.Now,
	}
}

// GetStats собирает счётчики параллельно; порядок выполнения не важен.
// Менеджеры клубов видят только регистрации своих клубов.
func (s *dashboardService) GetStats(ctx context.Context, actor Actor) (models.DashboardStats, error) {
	var stats models.DashboardStats

	regFilter := models.RegistrationFilter{}
	if actor.Role == models.RoleClubManager {
		regFilter.ManagedBy = &actor.UserID
	}
	pending := models.RegistrationPending
	pendingFilter := regFilter
	pendingFilter.Status = &pending

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TournamentsTotal, err = s.tournamentRepo.CountByStatus(gCtx)
		return err
	})
	g.Go(func() (err error) {
		stats.TournamentsActive, err = s.tournamentRepo.CountByStatus(gCtx,
			models.TournamentRegistrationOpen, models.TournamentRegistrationClosed, models.TournamentInProgress)
		return err
	})
	g.Go(func() (err error) {
		stats.ClubsTotal, err = s.clubRepo.Count(gCtx)
		return err
	})
	g.Go(func() (err error) {
		stats.RegistrationsTotal, err = s.registrationRepo.Count(gCtx, regFilter)
		return err
	})
	g.Go(func() (err error) {
		stats.RegistrationsPending, err = s.registrationRepo.Count(gCtx, pendingFilter)
		return err
	})
	g.Go(func() (err error) {
		stats.UnreadNotifications, err = s.notificationRepo.CountUnread(gCtx, actor.UserID)
		return err
	})
	g.Go(func() (err error) {
		stats.UpcomingTournaments, err = s.tournamentRepo.ListUpcoming(gCtx, s.now(), upcomingTournamentsLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	if stats.UpcomingTournaments == nil {
		stats.UpcomingTournaments = []models.Tournament{}
	}
	for i := range stats.UpcomingTournaments {
		populateTournamentLogoURL(&stats.UpcomingTournaments[i], s.uploader)
	}
	return stats, nil
}
