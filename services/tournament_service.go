package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/storage"
)

const (
	tournamentLogoEntity = "tournaments"
	defaultCurrency      = "EUR"
)

type TournamentService interface {
	List(ctx context.Context, filter models.TournamentFilter) (models.Page[models.Tournament], error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	Create(ctx context.Context, actor Actor, input CreateTournamentInput) (*models.Tournament, error)
	Update(ctx context.Context, actor Actor, id int, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, actor Actor, id int, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, actor Actor, id int) error
	UploadLogo(ctx context.Context, actor Actor, id int, file io.Reader) (*models.Tournament, error)
	// AutoUpdateTournamentStatusesByDates двигает статусы по датам; вызывается планировщиком.
	AutoUpdateTournamentStatusesByDates(ctx context.Context) (int, error)
}

type CreateTournamentInput struct {
	Name                 string    `json:"name" validate:"required,max=200"`
	Description          *string   `json:"description" validate:"omitempty,max=5000"`
	Location             string    `json:"location" validate:"required,max=200"`
	StartDate            time.Time `json:"startDate" validate:"required"`
	EndDate              time.Time `json:"endDate" validate:"required"`
	RegistrationDeadline time.Time `json:"registrationDeadline" validate:"required"`
	EntryFee             int64     `json:"entryFee" validate:"min=0"`
	Currency             string    `json:"currency" validate:"omitempty,len=3,alpha"`
}

type UpdateTournamentInput struct {
	Name                 *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description          *string    `json:"description" validate:"omitempty,max=5000"`
	Location             *string    `json:"location" validate:"omitempty,min=1,max=200"`
	StartDate            *time.Time `json:"startDate"`
	EndDate              *time.Time `json:"endDate"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
	EntryFee             *int64     `json:"entryFee" validate:"omitempty,min=0"`
	Currency             *string    `json:"currency" validate:"omitempty,len=3,alpha"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	ageGroupRepo   repositories.AgeGroupRepository
	notifications  NotificationService
	uploader       storage.FileUploader
	logger         *slog.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	ageGroupRepo repositories.AgeGroupRepository,
	notifications NotificationService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		ageGroupRepo:   ageGroupRepo,
		notifications:  notifications,
		uploader:       uploader,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *tournamentService) List(ctx context.Context, filter models.TournamentFilter) (models.Page[models.Tournament], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	items, total, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.Tournament]{}, err
	}
	for i := range items {
		populateTournamentLogoURL(&items[i], s.uploader)
	}
	return models.NewPage(items, total, filter.PageRequest), nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	ageGroups, err := s.ageGroupRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	t.AgeGroups = ageGroups
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

// getManaged загружает турнир и проверяет права организатора.
func (s *tournamentService) getManaged(ctx context.Context, actor Actor, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !actor.canManageTournament(t) {
		return nil, ErrForbiddenOperation
	}
	return t, nil
}

func (s *tournamentService) Create(ctx context.Context, actor Actor, input CreateTournamentInput) (*models.Tournament, error) {
	if !actor.IsAdmin() && !actor.IsOrganizer() {
		return nil, ErrForbiddenOperation
	}
	if err := validateTournamentDates(input.RegistrationDeadline, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	t := &models.Tournament{
		Name:                 strings.TrimSpace(input.Name),
		Description:          input.Description,
		Location:             strings.TrimSpace(input.Location),
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		RegistrationDeadline: input.RegistrationDeadline,
		Status:               models.TournamentDraft,
		OrganizerID:          actor.UserID,
		EntryFee:             input.EntryFee,
		Currency:             currency,
	}
	if t.Name == "" || t.Location == "" {
		return nil, fmt.Errorf("%w: name and location are required", ErrValidationFailed)
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.Int("organizer_id", actor.UserID))
	return t, nil
}

func (s *tournamentService) Update(ctx context.Context, actor Actor, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.getManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if t.Status.Terminal() {
		return nil, ErrTournamentLocked
	}

	if input.Name != nil {
		t.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Location != nil {
		t.Location = strings.TrimSpace(*input.Location)
	}
	if input.StartDate != nil {
		t.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		t.EndDate = *input.EndDate
	}
	if input.RegistrationDeadline != nil {
		t.RegistrationDeadline = *input.RegistrationDeadline
	}
	if input.EntryFee != nil {
		t.EntryFee = *input.EntryFee
	}
	if input.Currency != nil {
		t.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if t.Name == "" || t.Location == "" {
		return nil, fmt.Errorf("%w: name and location must not be empty", ErrValidationFailed)
	}
	if err := validateTournamentDates(t.RegistrationDeadline, t.StartDate, t.EndDate); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, mapRepoError(err)
	}
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, actor Actor, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !status.Valid() {
		return nil, ErrTournamentInvalidStatus
	}
	t, err := s.getManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(t.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, status)
	}
	if t.Status == status {
		populateTournamentLogoURL(t, s.uploader)
		return t, nil
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "tournament status changed",
		slog.Int("tournament_id", id), slog.String("from", string(t.Status)), slog.String("to", string(status)))
	t.Status = status
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, actor Actor, id int) error {
	t, err := s.getManaged(ctx, actor, id)
	if err != nil {
		return err
	}
	if t.Status != models.TournamentDraft && t.Status != models.TournamentCancelled {
		return ErrTournamentNotDeletable
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	deleteOldLogo(ctx, s.uploader, t.LogoKey, s.logger)
	s.logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", id), slog.Int("by", actor.UserID))
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, actor Actor, id int, file io.Reader) (*models.Tournament, error) {
	t, err := s.getManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	key, err := uploadLogo(ctx, s.uploader, tournamentLogoEntity, id, file)
	if err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		deleteOldLogo(ctx, s.uploader, &key, s.logger)
		return nil, mapRepoError(err)
	}
	deleteOldLogo(ctx, s.uploader, t.LogoKey, s.logger)

	t.LogoKey = &key
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

// autoStatusFor возвращает статус, в который турнир должен перейти к моменту now.
// Пропущенные тики догоняются сразу: open с прошедшей датой старта уходит в in_progress.
func autoStatusFor(t *models.Tournament, now time.Time) models.TournamentStatus {
	status := t.Status
	for {
		switch {
		case status == models.TournamentRegistrationOpen && !now.Before(t.RegistrationDeadline):
			status = models.TournamentRegistrationClosed
		case status == models.TournamentRegistrationClosed && !now.Before(t.StartDate):
			status = models.TournamentInProgress
		case status == models.TournamentInProgress && !now.Before(t.EndDate):
			status = models.TournamentCompleted
		default:
			return status
		}
	}
}

func (s *tournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.tournamentRepo.GetTournamentsForAutoStatusUpdate(ctx, nil, now)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range due {
		t := &due[i]
		next := autoStatusFor(t, now)
		if next == t.Status {
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.ErrorContext(ctx, "scheduler: failed to update tournament status",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		updated++
		s.logger.InfoContext(ctx, "scheduler: tournament status changed",
			slog.Int("tournament_id", t.ID), slog.String("from", string(t.Status)), slog.String("to", string(next)))

		link := fmt.Sprintf("/tournaments/%d", t.ID)
		s.notifications.Notify(ctx, &models.Notification{
			UserID:  t.OrganizerID,
			Type:    models.NotificationTournamentStatus,
			Title:   t.Name,
			Message: fmt.Sprintf("Tournament status changed to %s", next),
			Link:    &link,
		})
	}
	return updated, nil
}
