package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/realtime"
	"github.com/Dosada05/football-tournaments/repositories"
)

// Broadcaster: часть realtime.Hub, нужная сервисам.
type Broadcaster interface {
	BroadcastToRoom(room string, msg realtime.Message)
}

type NotificationService interface {
	// Notify сохраняет уведомление и отправляет его в комнату user_{id}.
	// Ошибки логируются: уведомления не должны ломать основную операцию.
	Notify(ctx context.Context, n *models.Notification)
	List(ctx context.Context, filter models.NotificationFilter) (models.Page[models.Notification], error)
	UnreadCount(ctx context.Context, userID int) (int, error)
	MarkRead(ctx context.Context, userID, notificationID int) error
	MarkAllRead(ctx context.Context, userID int) (int64, error)
	Delete(ctx context.Context, userID, notificationID int) error
}

type notificationService struct {
	repo   repositories.NotificationRepository
	hub    Broadcaster
	logger *slog.Logger
}

func NewNotificationService(repo repositories.NotificationRepository, hub Broadcaster, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, hub: hub, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, n *models.Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to create notification",
			slog.Int("user_id", n.UserID), slog.String("type", string(n.Type)), slog.Any("error", err))
		return
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(realtime.UserRoom(n.UserID), realtime.Message{
			Type:    realtime.MessageNotification,
			Payload: n,
		})
	}
}

func (s *notificationService) List(ctx context.Context, filter models.NotificationFilter) (models.Page[models.Notification], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return models.Page[models.Notification]{}, err
	}
	return models.NewPage(items, total, filter.PageRequest), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID int) error {
	return mapRepoError(s.repo.MarkRead(ctx, notificationID, userID))
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID int) error {
	return mapRepoError(s.repo.Delete(ctx, notificationID, userID))
}
