package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/utils"
)

const (
	inviteTokenLength = 16                 // 32 символа в hex
	inviteDuration    = 7 * 24 * time.Hour // срок действия приглашения
	inviteMaxAttempts = 3
)

type InvitationService interface {
	Create(ctx context.Context, actor Actor, clubID int, input CreateInvitationInput) (*models.Invitation, error)
	ListByClub(ctx context.Context, actor Actor, clubID int) ([]models.Invitation, error)
	Revoke(ctx context.Context, actor Actor, invitationID int) error
	Preview(ctx context.Context, token string) (*models.Invitation, error)
	Accept(ctx context.Context, actor Actor, token string) (*models.Invitation, error)
	ExpirePending(ctx context.Context) (int64, error)
}

type CreateInvitationInput struct {
	Email string `json:"email" validate:"required,email"`
}

type invitationService struct {
	inviteRepo    repositories.InvitationRepository
	clubRepo      repositories.ClubRepository
	userRepo      repositories.UserRepository
	txManager     repositories.TxManager
	notifications NotificationService
	email         *EmailService
	logger        *slog.Logger
	now           func() time.Time
}

func NewInvitationService(
	inviteRepo repositories.InvitationRepository,
	clubRepo repositories.ClubRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TxManager,
	notifications NotificationService,
	email *EmailService,
	logger *slog.Logger,
) InvitationService {
	return &invitationService{
		inviteRepo:    inviteRepo,
		clubRepo:      clubRepo,
		userRepo:      userRepo,
		txManager:     txManager,
		notifications: notifications,
		email:         email,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *invitationService) Create(ctx context.Context, actor Actor, clubID int, input CreateInvitationInput) (*models.Invitation, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := ensureClubManager(ctx, s.clubRepo, actor, clubID); err != nil {
		return nil, err
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidationFailed)
	}
	inviter, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	var inv *models.Invitation
	for attempt := 0; attempt < inviteMaxAttempts; attempt++ {
		token, err := utils.GenerateSecureToken(inviteTokenLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate invitation token: %w", err)
		}
		inv = &models.Invitation{
			ClubID:    clubID,
			Email:     email,
			Token:     token,
			Status:    models.InvitationPending,
			InvitedBy: actor.UserID,
			ExpiresAt: s.now().Add(inviteDuration),
			ClubName:  club.Name,
		}
		err = s.inviteRepo.Create(ctx, inv)
		if err == nil {
			break
		}
		// конфликт токена: пробуем еще раз
		if !errors.Is(err, repositories.ErrInvitationTokenConflict) {
			return nil, mapRepoError(err)
		}
		inv = nil
	}
	if inv == nil {
		return nil, fmt.Errorf("failed to generate unique invitation token after %d attempts", inviteMaxAttempts)
	}

	s.logger.InfoContext(ctx, "invitation created",
		slog.Int("invitation_id", inv.ID), slog.Int("club_id", clubID), slog.Int("by", actor.UserID))

	s.email.SendInvitationEmail(ctx, email, club.Name, inviter.FullName(), inv.Token, inv.ExpiresAt)
	if invitee, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		link := "/invitations/" + inv.Token
		s.notifications.Notify(ctx, &models.Notification{
			UserID:  invitee.ID,
			Type:    models.NotificationInvitation,
			Title:   club.Name,
			Message: fmt.Sprintf("%s invited you to manage %s", inviter.FullName(), club.Name),
			Link:    &link,
		})
	}
	return inv, nil
}

func (s *invitationService) ListByClub(ctx context.Context, actor Actor, clubID int) ([]models.Invitation, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		return nil, mapRepoError(err)
	}
	if err := ensureClubManager(ctx, s.clubRepo, actor, clubID); err != nil {
		return nil, err
	}
	invitations, err := s.inviteRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range invitations {
		markExpired(&invitations[i], now)
	}
	return invitations, nil
}

func (s *invitationService) Revoke(ctx context.Context, actor Actor, invitationID int) error {
	inv, err := s.inviteRepo.GetByID(ctx, invitationID)
	if err != nil {
		return mapRepoError(err)
	}
	if err := ensureClubManager(ctx, s.clubRepo, actor, inv.ClubID); err != nil {
		return err
	}
	if inv.Status != models.InvitationPending {
		return ErrInvitationNotPending
	}
	if err := s.inviteRepo.UpdateStatus(ctx, nil, inv.ID, models.InvitationRevoked); err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "invitation revoked", slog.Int("invitation_id", inv.ID), slog.Int("by", actor.UserID))
	return nil
}

// Preview доступен без авторизации: по токену видно клуб, адрес и статус.
func (s *invitationService) Preview(ctx context.Context, token string) (*models.Invitation, error) {
	inv, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, mapRepoError(err)
	}
	markExpired(inv, s.now())
	return inv, nil
}

func (s *invitationService) Accept(ctx context.Context, actor Actor, token string) (*models.Invitation, error) {
	inv, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if inv.Status != models.InvitationPending {
		return nil, ErrInvitationNotPending
	}
	if inv.Expired(s.now()) {
		if err := s.inviteRepo.UpdateStatus(ctx, nil, inv.ID, models.InvitationExpired); err != nil {
			s.logger.WarnContext(ctx, "failed to mark invitation expired", slog.Int("invitation_id", inv.ID), slog.Any("error", err))
		}
		return nil, ErrInvitationExpired
	}
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if normalizeEmail(user.Email) != normalizeEmail(inv.Email) {
		return nil, ErrInvitationEmailMismatch
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.clubRepo.AddManager(ctx, exec, inv.ClubID, user.ID); err != nil {
			return err
		}
		return s.inviteRepo.UpdateStatus(ctx, exec, inv.ID, models.InvitationAccepted)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	inv.Status = models.InvitationAccepted
	s.logger.InfoContext(ctx, "invitation accepted",
		slog.Int("invitation_id", inv.ID), slog.Int("club_id", inv.ClubID), slog.Int("user_id", user.ID))
	return inv, nil
}

func (s *invitationService) ExpirePending(ctx context.Context) (int64, error) {
	return s.inviteRepo.ExpirePending(ctx, s.now())
}

// markExpired показывает просроченное приглашение как expired до того,
// как его пометит планировщик.
func markExpired(inv *models.Invitation, now time.Time) {
	if inv.Status == models.InvitationPending && inv.Expired(now) {
		inv.Status = models.InvitationExpired
	}
}
