package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/football-tournaments/draw"
	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/realtime"
	"github.com/Dosada05/football-tournaments/repositories"
)

type DrawService interface {
	GetPots(ctx context.Context, ageGroupID int) (*models.PotOverview, error)
	SetPot(ctx context.Context, actor Actor, registrationID int, potNumber *int) (*models.Registration, error)
	BulkAssignPots(ctx context.Context, actor Actor, ageGroupID int, assignments []models.PotAssignment) (*models.PotOverview, error)
	ClearPots(ctx context.Context, actor Actor, ageGroupID int) (*models.PotOverview, error)

	ExecuteDraw(ctx context.Context, actor Actor, ageGroupID int, seed *int64) (*DrawResult, error)
	GetGroups(ctx context.Context, ageGroupID int) ([]models.Group, error)
	ResetDraw(ctx context.Context, actor Actor, ageGroupID int) error
}

type DrawResult struct {
	AgeGroupID      int            `json:"ageGroupId"`
	Seed            int64          `json:"seed"`
	DrawCompletedAt time.Time      `json:"drawCompletedAt"`
	Groups          []models.Group `json:"groups"`
}

type BulkAssignPotsInput struct {
	Assignments []models.PotAssignment `json:"assignments" validate:"required,dive"`
}

type ExecuteDrawInput struct {
	Seed *int64 `json:"seed"`
}

type drawService struct {
	ageGroupRepo     repositories.AgeGroupRepository
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	drawRepo         repositories.DrawRepository
	clubRepo         repositories.ClubRepository
	userRepo         repositories.UserRepository
	txManager        repositories.TxManager
	notifications    NotificationService
	email            *EmailService
	hub              Broadcaster
	generator        draw.Generator
	fixtures         *draw.RoundRobinGenerator
	logger           *slog.Logger
	now              func() time.Time
}

type DrawServiceDeps struct {
	AgeGroupRepo     repositories.AgeGroupRepository
	TournamentRepo   repositories.TournamentRepository
	RegistrationRepo repositories.RegistrationRepository
	DrawRepo         repositories.DrawRepository
	ClubRepo         repositories.ClubRepository
	UserRepo         repositories.UserRepository
	TxManager        repositories.TxManager
	Notifications    NotificationService
	Email            *EmailService
	Hub              Broadcaster
	Logger           *slog.Logger
}

func NewDrawService(deps DrawServiceDeps) DrawService {
	return &drawService{
		ageGroupRepo:     deps.AgeGroupRepo,
		tournamentRepo:   deps.TournamentRepo,
		registrationRepo: deps.RegistrationRepo,
		drawRepo:         deps.DrawRepo,
		clubRepo:         deps.ClubRepo,
		userRepo:         deps.UserRepo,
		txManager:        deps.TxManager,
		notifications:    deps.Notifications,
		email:            deps.Email,
		hub:              deps.Hub,
		generator:        draw.NewPotDrawGenerator(),
		fixtures:         draw.NewRoundRobinGenerator(),
		logger:           deps.Logger,
		now:              time.Now,
	}
}

func (s *drawService) overview(ctx context.Context, exec repositories.SQLExecutor, ag *models.AgeGroup) (*models.PotOverview, error) {
	regs, err := s.registrationRepo.ListApprovedByAgeGroup(ctx, exec, ag.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved registrations: %w", err)
	}
	pots, unassigned := draw.BuildPots(regs)
	readiness := draw.CheckReadiness(pots, len(regs), ag.NumberOfGroups)

	ov := &models.PotOverview{
		AgeGroupID:         ag.ID,
		NumberOfGroups:     ag.NumberOfGroups,
		Pots:               pots,
		Unassigned:         unassigned,
		TotalAssigned:      readiness.TotalAssigned,
		TotalRegistrations: len(regs),
		CanExecuteDraw:     readiness.CanExecute,
		Reasons:            readiness.Reasons,
		DrawCompleted:      ag.DrawCompleted(),
	}
	if ov.DrawCompleted {
		ov.CanExecuteDraw = false
		ov.Reasons = append(ov.Reasons, "draw has already been completed")
	}
	return ov, nil
}

func (s *drawService) broadcast(ageGroupID int, msgType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(realtime.AgeGroupRoom(ageGroupID), realtime.Message{Type: msgType, Payload: payload})
}

func (s *drawService) GetPots(ctx context.Context, ageGroupID int) (*models.PotOverview, error) {
	ag, err := s.ageGroupRepo.GetByID(ctx, ageGroupID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.overview(ctx, nil, ag)
}

func (s *drawService) SetPot(ctx context.Context, actor Actor, registrationID int, potNumber *int) (*models.Registration, error) {
	if potNumber != nil && !models.ValidPotNumber(*potNumber) {
		return nil, ErrInvalidPotNumber
	}
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if _, _, err := managedAgeGroup(ctx, s.ageGroupRepo, s.tournamentRepo, actor, reg.AgeGroupID); err != nil {
		return nil, err
	}

	var ag *models.AgeGroup
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		ag, err = s.ageGroupRepo.GetByIDForUpdate(ctx, exec, reg.AgeGroupID)
		if err != nil {
			return mapRepoError(err)
		}
		if ag.DrawCompleted() {
			return ErrDrawAlreadyCompleted
		}
		if reg, err = s.registrationRepo.GetByID(ctx, registrationID); err != nil {
			return mapRepoError(err)
		}
		if reg.Status != models.RegistrationApproved {
			return ErrRegistrationNotApproved
		}
		return mapRepoError(s.registrationRepo.SetPot(ctx, exec, reg.ID, potNumber))
	})
	if err != nil {
		return nil, err
	}
	reg.PotNumber = potNumber

	if ov, err := s.overview(ctx, nil, ag); err == nil {
		s.broadcast(ag.ID, realtime.MessagePotsUpdated, ov)
	}
	return reg, nil
}

// BulkAssignPots применяет все назначения в одной транзакции: либо все, либо ни одного.
func (s *drawService) BulkAssignPots(ctx context.Context, actor Actor, ageGroupID int, assignments []models.PotAssignment) (*models.PotOverview, error) {
	if _, _, err := managedAgeGroup(ctx, s.ageGroupRepo, s.tournamentRepo, actor, ageGroupID); err != nil {
		return nil, err
	}
	for _, a := range assignments {
		if a.PotNumber != nil && !models.ValidPotNumber(*a.PotNumber) {
			return nil, fmt.Errorf("%w: registration %d", ErrInvalidPotNumber, a.RegistrationID)
		}
	}

	var ov *models.PotOverview
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		ag, err := s.ageGroupRepo.GetByIDForUpdate(ctx, exec, ageGroupID)
		if err != nil {
			return mapRepoError(err)
		}
		if ag.DrawCompleted() {
			return ErrDrawAlreadyCompleted
		}
		approved, err := s.registrationRepo.ListApprovedByAgeGroup(ctx, exec, ageGroupID)
		if err != nil {
			return err
		}
		eligible := make(map[int]struct{}, len(approved))
		for _, r := range approved {
			eligible[r.ID] = struct{}{}
		}
		for _, a := range assignments {
			if _, ok := eligible[a.RegistrationID]; !ok {
				return fmt.Errorf("%w: registration %d", ErrRegistrationNotApproved, a.RegistrationID)
			}
		}
		for _, a := range assignments {
			if err := s.registrationRepo.SetPot(ctx, exec, a.RegistrationID, a.PotNumber); err != nil {
				return mapRepoError(err)
			}
		}
		ov, err = s.overview(ctx, exec, ag)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.broadcast(ageGroupID, realtime.MessagePotsUpdated, ov)
	return ov, nil
}

func (s *drawService) ClearPots(ctx context.Context, actor Actor, ageGroupID int) (*models.PotOverview, error) {
	if _, _, err := managedAgeGroup(ctx, s.ageGroupRepo, s.tournamentRepo, actor, ageGroupID); err != nil {
		return nil, err
	}

	var (
		ov      *models.PotOverview
		cleared int64
	)
	err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		ag, err := s.ageGroupRepo.GetByIDForUpdate(ctx, exec, ageGroupID)
		if err != nil {
			return mapRepoError(err)
		}
		if ag.DrawCompleted() {
			return ErrDrawAlreadyCompleted
		}
		if cleared, err = s.registrationRepo.ClearPots(ctx, exec, ageGroupID); err != nil {
			return err
		}
		ov, err = s.overview(ctx, exec, ag)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "pots cleared", slog.Int("age_group_id", ageGroupID), slog.Int64("registrations", cleared))
	s.broadcast(ageGroupID, realtime.MessagePotsUpdated, ov)
	return ov, nil
}

func (s *drawService) ExecuteDraw(ctx context.Context, actor Actor, ageGroupID int, seed *int64) (*DrawResult, error) {
	_, t, err := managedAgeGroup(ctx, s.ageGroupRepo, s.tournamentRepo, actor, ageGroupID)
	if err != nil {
		return nil, err
	}
	if t.Status.Terminal() {
		return nil, ErrTournamentLocked
	}

	var (
		ag         *models.AgeGroup
		regs       []models.Registration
		result     *draw.Result
		completed  = s.now().UTC()
		groupNames = make(map[int]string)
	)
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		ag, err = s.ageGroupRepo.GetByIDForUpdate(ctx, exec, ageGroupID)
		if err != nil {
			return mapRepoError(err)
		}
		if ag.DrawCompleted() {
			return ErrDrawAlreadyCompleted
		}
		regs, err = s.registrationRepo.ListApprovedByAgeGroup(ctx, exec, ageGroupID)
		if err != nil {
			return err
		}
		pots, _ := draw.BuildPots(regs)
		readiness := draw.CheckReadiness(pots, len(regs), ag.NumberOfGroups)
		if !readiness.CanExecute {
			return &DrawNotReadyError{Reasons: readiness.Reasons}
		}

		result, err = s.generator.Draw(ctx, draw.Params{AgeGroup: ag, Pots: pots, Seed: seed})
		if err != nil {
			if errors.Is(err, draw.ErrNotReady) {
				return &DrawNotReadyError{Reasons: []string{err.Error()}}
			}
			return err
		}

		for _, dg := range result.Groups {
			group := &models.Group{
				TournamentID: ag.TournamentID,
				AgeGroupID:   ag.ID,
				Name:         dg.Name,
				Seed:         result.Seed,
			}
			if err := s.drawRepo.CreateGroup(ctx, exec, group); err != nil {
				return mapRepoError(err)
			}
			teamIDs := make([]int, 0, len(dg.Teams))
			for _, team := range dg.Teams {
				if err := s.drawRepo.AssignTeam(ctx, exec, team.RegistrationID, group.ID, team.Position); err != nil {
					return err
				}
				teamIDs = append(teamIDs, team.RegistrationID)
				groupNames[team.RegistrationID] = dg.Name
			}
			if len(teamIDs) < 2 {
				continue
			}
			matches, err := s.fixtures.GenerateFixtures(ctx, dg.Name, teamIDs)
			if err != nil {
				return err
			}
			for _, m := range matches {
				fixture := &models.Fixture{
					GroupID:      group.ID,
					Round:        m.Round,
					OrderInRound: m.OrderInRound,
					HomeTeamID:   m.HomeID,
					AwayTeamID:   m.AwayID,
				}
				if err := s.drawRepo.CreateFixture(ctx, exec, fixture); err != nil {
					return err
				}
			}
		}
		return s.ageGroupRepo.SetDrawCompleted(ctx, exec, ag.ID, &completed)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "draw executed",
		slog.Int("age_group_id", ageGroupID), slog.Int64("seed", result.Seed),
		slog.Int("teams", len(regs)), slog.Int("groups", len(result.Groups)), slog.Int("by", actor.UserID))

	groups, err := s.drawRepo.ListGroups(ctx, ageGroupID)
	if err != nil {
		return nil, fmt.Errorf("draw saved but failed to load groups: %w", err)
	}
	res := &DrawResult{AgeGroupID: ageGroupID, Seed: result.Seed, DrawCompletedAt: completed, Groups: groups}
	s.broadcast(ageGroupID, realtime.MessageDrawCompleted, res)
	s.notifyDrawCompleted(ctx, t, ag, regs, groupNames)
	return res, nil
}

func (s *drawService) notifyDrawCompleted(ctx context.Context, t *models.Tournament, ag *models.AgeGroup, regs []models.Registration, groupNames map[int]string) {
	link := fmt.Sprintf("/tournaments/%d/age-groups/%d/groups", t.ID, ag.ID)
	managersByClub := make(map[int][]int)
	for _, reg := range regs {
		managerIDs, ok := managersByClub[reg.ClubID]
		if !ok {
			var err error
			managerIDs, err = s.clubRepo.ListManagerIDs(ctx, reg.ClubID)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to load club managers", slog.Int("club_id", reg.ClubID), slog.Any("error", err))
			}
			managersByClub[reg.ClubID] = managerIDs
		}
		groupName := groupNames[reg.ID]
		for _, userID := range managerIDs {
			s.notifications.Notify(ctx, &models.Notification{
				UserID:  userID,
				Type:    models.NotificationDrawCompleted,
				Title:   t.Name,
				Message: fmt.Sprintf("%s (%s) was drawn into group %s", reg.TeamName, ag.Name, groupName),
				Link:    &link,
			})
			user, err := s.userRepo.GetByID(ctx, userID)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to load club manager", slog.Int("user_id", userID), slog.Any("error", err))
				continue
			}
			s.email.SendDrawCompletedEmail(ctx, user.Email, t.Name, ag.Name, reg.TeamName, groupName, t.ID)
		}
	}
}

func (s *drawService) GetGroups(ctx context.Context, ageGroupID int) ([]models.Group, error) {
	if _, err := s.ageGroupRepo.GetByID(ctx, ageGroupID); err != nil {
		return nil, mapRepoError(err)
	}
	groups, err := s.drawRepo.ListGroups(ctx, ageGroupID)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// ResetDraw удаляет группы и матчи; корзины остаются как были перед жеребьевкой.
func (s *drawService) ResetDraw(ctx context.Context, actor Actor, ageGroupID int) error {
	_, t, err := managedAgeGroup(ctx, s.ageGroupRepo, s.tournamentRepo, actor, ageGroupID)
	if err != nil {
		return err
	}
	if t.Status == models.TournamentInProgress || t.Status == models.TournamentCompleted {
		return ErrTournamentLocked
	}
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		ag, err := s.ageGroupRepo.GetByIDForUpdate(ctx, exec, ageGroupID)
		if err != nil {
			return mapRepoError(err)
		}
		if !ag.DrawCompleted() {
			return ErrDrawNotCompleted
		}
		if err := s.drawRepo.DeleteByAgeGroup(ctx, exec, ageGroupID); err != nil {
			return err
		}
		return s.ageGroupRepo.SetDrawCompleted(ctx, exec, ageGroupID, nil)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "draw reset", slog.Int("age_group_id", ageGroupID), slog.Int("by", actor.UserID))
	s.broadcast(ageGroupID, realtime.MessageDrawReset, map[string]int{"ageGroupId": ageGroupID})
	return nil
}
