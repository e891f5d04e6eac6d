package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
)

type RegistrationService interface {
	Create(ctx context.Context, actor Actor, input CreateRegistrationInput) (*models.Registration, error)
	List(ctx context.Context, actor Actor, filter models.RegistrationFilter) (models.Page[models.Registration], error)
	GetByID(ctx context.Context, actor Actor, id int) (*models.Registration, error)
	Update(ctx context.Context, actor Actor, id int, input UpdateRegistrationInput) (*models.Registration, error)
	UpdateStatus(ctx context.Context, actor Actor, id int, input UpdateRegistrationStatusInput) (*models.Registration, error)
	UpdatePaymentStatus(ctx context.Context, actor Actor, id int, status models.PaymentStatus) (*models.Registration, error)
	Delete(ctx context.Context, actor Actor, id int) error
}

type CreateRegistrationInput struct {
	TournamentID int     `json:"tournamentId" validate:"required,gt=0"`
	AgeGroupID   int     `json:"ageGroupId" validate:"required,gt=0"`
	ClubID       int     `json:"clubId" validate:"required,gt=0"`
	TeamName     string  `json:"teamName" validate:"required,max=150"`
	CoachName    string  `json:"coachName" validate:"required,max=150"`
	ContactEmail string  `json:"contactEmail" validate:"required,email"`
	ContactPhone *string `json:"contactPhone" validate:"omitempty,max=30"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateRegistrationInput struct {
	TeamName     *string `json:"teamName" validate:"omitempty,min=1,max=150"`
	CoachName    *string `json:"coachName" validate:"omitempty,min=1,max=150"`
	ContactEmail *string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone *string `json:"contactPhone" validate:"omitempty,max=30"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateRegistrationStatusInput struct {
	Status models.RegistrationStatus `json:"status" validate:"required"`
	Reason string                    `json:"reason" validate:"max=1000"`
}

type registrationService struct {
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	ageGroupRepo     repositories.AgeGroupRepository
	clubRepo         repositories.ClubRepository
	userRepo         repositories.UserRepository
	txManager        repositories.TxManager
	notifications    NotificationService
	email            *EmailService
	logger           *slog.Logger
	now              func() time.Time
}

func NewRegistrationService(
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	ageGroupRepo repositories.AgeGroupRepository,
	clubRepo repositories.ClubRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TxManager,
	notifications NotificationService,
	email *EmailService,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		ageGroupRepo:     ageGroupRepo,
		clubRepo:         clubRepo,
		userRepo:         userRepo,
		txManager:        txManager,
		notifications:    notifications,
		email:            email,
		logger:           logger,
		now:              time.Now,
	}
}

type registrationContext struct {
	reg        *models.Registration
	tournament *models.Tournament
	ageGroup   *models.AgeGroup
	isOwner    bool
}

func (rc *registrationContext) canManage(actor Actor) bool {
	return actor.canManageTournament(rc.tournament)
}

func (s *registrationService) load(ctx context.Context, actor Actor, id int) (*registrationContext, error) {
	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	t, err := s.tournamentRepo.GetByID(ctx, reg.TournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	ag, err := s.ageGroupRepo.GetByID(ctx, reg.AgeGroupID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	owner, err := s.clubRepo.IsManager(ctx, reg.ClubID, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &registrationContext{reg: reg, tournament: t, ageGroup: ag, isOwner: owner}, nil
}

func (s *registrationService) Create(ctx context.Context, actor Actor, input CreateRegistrationInput) (*models.Registration, error) {
	if err := ensureClubManager(ctx, s.clubRepo, actor, input.ClubID); err != nil {
		return nil, mapRepoError(err)
	}
	club, err := s.clubRepo.GetByID(ctx, input.ClubID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	t, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if t.Status != models.TournamentRegistrationOpen || !s.now().Before(t.RegistrationDeadline) {
		return nil, ErrRegistrationNotOpen
	}
	ag, err := s.ageGroupRepo.GetByID(ctx, input.AgeGroupID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if ag.TournamentID != t.ID {
		return nil, ErrRegistrationAgeGroupMismatch
	}

	reg := &models.Registration{
		TournamentID:  t.ID,
		AgeGroupID:    ag.ID,
		ClubID:        input.ClubID,
		TeamName:      strings.TrimSpace(input.TeamName),
		CoachName:     strings.TrimSpace(input.CoachName),
		ContactEmail:  normalizeEmail(input.ContactEmail),
		ContactPhone:  input.ContactPhone,
		Notes:         input.Notes,
		Status:        models.RegistrationPending,
		PaymentStatus: models.PaymentUnpaid,
		ClubName:      club.Name,
	}
	if reg.TeamName == "" || reg.CoachName == "" {
		return nil, fmt.Errorf("%w: teamName and coachName are required", ErrValidationFailed)
	}

	// подсчёт и вставка под блокировкой возрастной группы
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.ageGroupRepo.GetByIDForUpdate(ctx, exec, ag.ID)
		if err != nil {
			return mapRepoError(err)
		}
		if locked.DrawCompleted() {
			return ErrDrawAlreadyCompleted
		}
		active, err := s.registrationRepo.CountActiveInAgeGroup(ctx, exec, locked.ID)
		if err != nil {
			return err
		}
		if active >= locked.MaxTeams {
			return ErrAgeGroupFull
		}
		return mapRepoError(s.registrationRepo.Create(ctx, exec, reg))
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "registration created",
		slog.Int("registration_id", reg.ID), slog.Int("age_group_id", ag.ID), slog.Int("club_id", reg.ClubID))
	return reg, nil
}

// List: менеджеры клубов видят только регистрации своих клубов.
func (s *registrationService) List(ctx context.Context, actor Actor, filter models.RegistrationFilter) (models.Page[models.Registration], error) {
	if actor.Role == models.RoleClubManager {
		filter.ManagedBy = &actor.UserID
	}
	filter.PageRequest = filter.PageRequest.Normalize()
	items, total, err := s.registrationRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.Registration]{}, err
	}
	return models.NewPage(items, total, filter.PageRequest), nil
}

func (s *registrationService) GetByID(ctx context.Context, actor Actor, id int) (*models.Registration, error) {
	rc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !rc.isOwner && !rc.canManage(actor) && !actor.IsOrganizer() {
		return nil, ErrForbiddenOperation
	}
	return rc.reg, nil
}

func (s *registrationService) Update(ctx context.Context, actor Actor, id int, input UpdateRegistrationInput) (*models.Registration, error) {
	rc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	switch {
	case rc.canManage(actor):
	case rc.isOwner:
		if rc.reg.Status != models.RegistrationPending {
			return nil, ErrRegistrationNotPending
		}
	default:
		return nil, ErrForbiddenOperation
	}

	reg := rc.reg
	if input.TeamName != nil {
		reg.TeamName = strings.TrimSpace(*input.TeamName)
	}
	if input.CoachName != nil {
		reg.CoachName = strings.TrimSpace(*input.CoachName)
	}
	if input.ContactEmail != nil {
		reg.ContactEmail = normalizeEmail(*input.ContactEmail)
	}
	if input.ContactPhone != nil {
		reg.ContactPhone = input.ContactPhone
	}
	if input.Notes != nil {
		reg.Notes = input.Notes
	}
	if reg.TeamName == "" || reg.CoachName == "" {
		return nil, fmt.Errorf("%w: teamName and coachName must not be empty", ErrValidationFailed)
	}
	if err := s.registrationRepo.Update(ctx, reg); err != nil {
		return nil, mapRepoError(err)
	}
	return reg, nil
}

func (s *registrationService) UpdateStatus(ctx context.Context, actor Actor, id int, input UpdateRegistrationStatusInput) (*models.Registration, error) {
	if !input.Status.Valid() {
		return nil, ErrRegistrationInvalidStatus
	}
	rc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	reg := rc.reg

	if input.Status == models.RegistrationWithdrawn {
		if !rc.isOwner && !rc.canManage(actor) {
			return nil, ErrForbiddenOperation
		}
	} else if !rc.canManage(actor) {
		return nil, ErrForbiddenOperation
	}
	if !isValidRegistrationTransition(reg.Status, input.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrRegistrationInvalidTransition, reg.Status, input.Status)
	}

	var leavingApproved bool
	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		ag, err := s.ageGroupRepo.GetByIDForUpdate(ctx, exec, reg.AgeGroupID)
		if err != nil {
			return mapRepoError(err)
		}
		// статус перечитываем под блокировкой: его мог сменить параллельный запрос
		current, err := s.registrationRepo.GetByID(ctx, id)
		if err != nil {
			return mapRepoError(err)
		}
		if !isValidRegistrationTransition(current.Status, input.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrRegistrationInvalidTransition, current.Status, input.Status)
		}
		// Состав жеребьевки заморожен: сначала нужно сбросить жеребьевку.
		leavingApproved = current.Status == models.RegistrationApproved
		if ag.DrawCompleted() && (leavingApproved || input.Status == models.RegistrationApproved) {
			return ErrDrawAlreadyCompleted
		}
		reg.Status = current.Status
		return mapRepoError(s.registrationRepo.UpdateStatus(ctx, exec, id, input.Status, leavingApproved))
	})
	if err != nil {
		return nil, err
	}
	previous := reg.Status
	reg.Status = input.Status
	if leavingApproved {
		reg.PotNumber = nil
		reg.GroupID = nil
	}
	s.logger.InfoContext(ctx, "registration status changed",
		slog.Int("registration_id", id), slog.String("from", string(previous)), slog.String("to", string(reg.Status)))

	s.notifyStatusChange(ctx, rc, input.Reason)
	return reg, nil
}

func (s *registrationService) notifyStatusChange(ctx context.Context, rc *registrationContext, reason string) {
	managerIDs, err := s.clubRepo.ListManagerIDs(ctx, rc.reg.ClubID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load club managers", slog.Int("club_id", rc.reg.ClubID), slog.Any("error", err))
		return
	}
	link := fmt.Sprintf("/registrations/%d", rc.reg.ID)
	message := fmt.Sprintf("%s (%s) registration is now %s", rc.reg.TeamName, rc.ageGroup.Name, rc.reg.Status)
	if reason != "" {
		message += ": " + reason
	}
	for _, userID := range managerIDs {
		s.notifications.Notify(ctx, &models.Notification{
			UserID:  userID,
			Type:    models.NotificationRegistrationStatus,
			Title:   rc.tournament.Name,
			Message: message,
			Link:    &link,
		})
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load club manager", slog.Int("user_id", userID), slog.Any("error", err))
			continue
		}
		s.email.SendRegistrationStatusEmail(ctx, user.Email, rc.tournament.Name, rc.ageGroup.Name,
			rc.reg.TeamName, string(rc.reg.Status), reason, rc.reg.ID)
	}
}

func (s *registrationService) UpdatePaymentStatus(ctx context.Context, actor Actor, id int, status models.PaymentStatus) (*models.Registration, error) {
	if !status.Valid() {
		return nil, ErrRegistrationInvalidPayment
	}
	rc, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !rc.canManage(actor) {
		return nil, ErrForbiddenOperation
	}
	if err := s.registrationRepo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, mapRepoError(err)
	}
	rc.reg.PaymentStatus = status
	return rc.reg, nil
}

func (s *registrationService) Delete(ctx context.Context, actor Actor, id int) error {
	rc, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	switch {
	case actor.IsAdmin():
	case rc.isOwner && rc.reg.Status == models.RegistrationPending:
	case rc.isOwner:
		return ErrRegistrationNotPending
	default:
		return ErrForbiddenOperation
	}
	if rc.reg.GroupID != nil {
		return ErrDrawAlreadyCompleted
	}
	if err := s.registrationRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "registration deleted", slog.Int("registration_id", id), slog.Int("by", actor.UserID))
	return nil
}
