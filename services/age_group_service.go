package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/football-tournaments/draw"
	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
)

type AgeGroupService interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.AgeGroup, error)
	GetByID(ctx context.Context, id int) (*models.AgeGroup, error)
	Create(ctx context.Context, actor Actor, tournamentID int, input CreateAgeGroupInput) (*models.AgeGroup, error)
	Update(ctx context.Context, actor Actor, id int, input UpdateAgeGroupInput) (*models.AgeGroup, error)
	Delete(ctx context.Context, actor Actor, id int) error
}

type CreateAgeGroupInput struct {
	Name           string `json:"name" validate:"required,max=50"`
	BirthYearFrom  int    `json:"birthYearFrom" validate:"required,min=1900,max=2100"`
	BirthYearTo    int    `json:"birthYearTo" validate:"required,min=1900,max=2100"`
	MaxTeams       int    `json:"maxTeams" validate:"required,min=1,max=512"`
	NumberOfGroups int    `json:"numberOfGroups" validate:"required,min=1,max=26"`
}

type UpdateAgeGroupInput struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=50"`
	BirthYearFrom  *int    `json:"birthYearFrom" validate:"omitempty,min=1900,max=2100"`
	BirthYearTo    *int    `json:"birthYearTo" validate:"omitempty,min=1900,max=2100"`
	MaxTeams       *int    `json:"maxTeams" validate:"omitempty,min=1,max=512"`
	NumberOfGroups *int    `json:"numberOfGroups" validate:"omitempty,min=1,max=26"`
}

type ageGroupService struct {
	ageGroupRepo   repositories.AgeGroupRepository
	tournamentRepo repositories.TournamentRepository
	txManager      repositories.TxManager
	logger         *slog.Logger
}

func NewAgeGroupService(
	ageGroupRepo repositories.AgeGroupRepository,
	tournamentRepo repositories.TournamentRepository,
	txManager repositories.TxManager,
	logger *slog.Logger,
) AgeGroupService {
	return &ageGroupService{ageGroupRepo: ageGroupRepo, tournamentRepo: tournamentRepo, txManager: txManager, logger: logger}
}

func validateAgeGroup(a *models.AgeGroup) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if a.BirthYearFrom > a.BirthYearTo {
		return fmt.Errorf("%w: birthYearFrom must not be after birthYearTo", ErrValidationFailed)
	}
	if a.NumberOfGroups < 1 || a.NumberOfGroups > draw.MaxGroups {
		return fmt.Errorf("%w: numberOfGroups must be between 1 and %d", ErrValidationFailed, draw.MaxGroups)
	}
	if a.MaxTeams < a.NumberOfGroups {
		return fmt.Errorf("%w: maxTeams must be at least numberOfGroups", ErrValidationFailed)
	}
	return nil
}

// managedAgeGroup загружает возрастную группу, её турнир и проверяет права.
func managedAgeGroup(
	ctx context.Context,
	ageGroupRepo repositories.AgeGroupRepository,
	tournamentRepo repositories.TournamentRepository,
	actor Actor,
	id int,
) (*models.AgeGroup, *models.Tournament, error) {
	ag, err := ageGroupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	t, err := tournamentRepo.GetByID(ctx, ag.TournamentID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	if !actor.canManageTournament(t) {
		return nil, nil, ErrForbiddenOperation
	}
	return ag, t, nil
}

func (s *ageGroupService) ListByTournament(ctx context.Context, tournamentID int) ([]models.AgeGroup, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapRepoError(err)
	}
	return s.ageGroupRepo.ListByTournament(ctx, tournamentID)
}

func (s *ageGroupService) GetByID(ctx context.Context, id int) (*models.AgeGroup, error) {
	ag, err := s.ageGroupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return ag, nil
}

func (s *ageGroupService) Create(ctx context.Context, actor Actor, tournamentID int, input CreateAgeGroupInput) (*models.AgeGroup, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !actor.canManageTournament(t) {
		return nil, ErrForbiddenOperation
	}
	if t.Status.Terminal() || t.Status == models.TournamentInProgress {
		return nil, ErrTournamentLocked
	}

	ag := &models.AgeGroup{
		TournamentID:   tournamentID,
		Name:           strings.TrimSpace(input.Name),
		BirthYearFrom:  input.BirthYearFrom,
		BirthYearTo:    input.BirthYearTo,
		MaxTeams:       input.MaxTeams,
		NumberOfGroups: input.NumberOfGroups,
	}
	if err := validateAgeGroup(ag); err != nil {
		return nil, err
	}
	if err := s.ageGroupRepo.Create(ctx, ag); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "age group created", slog.Int("age_group_id", ag.ID), slog.Int("tournament_id", tournamentID))
	return ag, nil
}

func (s *ageGroupService) Update(ctx context.Context, actor Actor, id int, input UpdateAgeGroupInput) (*models.AgeGroup, error) {
	_, t, err := managedAgeGroup(ctx, s.ageGroupRepo, s.tournamentRepo, actor, id)
	if err != nil {
		return nil, err
	}
	if t.Status.Terminal() {
		return nil, ErrTournamentLocked
	}

	var ag *models.AgeGroup
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		ag, err = s.ageGroupRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return mapRepoError(err)
		}
		if input.NumberOfGroups != nil && *input.NumberOfGroups != ag.NumberOfGroups && ag.DrawCompleted() {
			return ErrNumberOfGroupsLocked
		}
		if input.Name != nil {
			ag.Name = strings.TrimSpace(*input.Name)
		}
		if input.BirthYearFrom != nil {
			ag.BirthYearFrom = *input.BirthYearFrom
		}
		if input.BirthYearTo != nil {
			ag.BirthYearTo = *input.BirthYearTo
		}
		if input.MaxTeams != nil {
			ag.MaxTeams = *input.MaxTeams
		}
		if input.NumberOfGroups != nil {
			ag.NumberOfGroups = *input.NumberOfGroups
		}
		if err := validateAgeGroup(ag); err != nil {
			return err
		}
		return mapRepoError(s.ageGroupRepo.Update(ctx, exec, ag))
	})
	if err != nil {
		return nil, err
	}
	return ag, nil
}

func (s *ageGroupService) Delete(ctx context.Context, actor Actor, id int) error {
	_, t, err := managedAgeGroup(ctx, s.ageGroupRepo, s.tournamentRepo, actor, id)
	if err != nil {
		return err
	}
	if t.Status == models.TournamentInProgress || t.Status == models.TournamentCompleted {
		return ErrTournamentLocked
	}
	if err := s.ageGroupRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "age group deleted", slog.Int("age_group_id", id), slog.Int("by", actor.UserID))
	return nil
}
