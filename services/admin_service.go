package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
)

type AdminUserService interface {
	ListUsers(ctx context.Context, filter models.UserFilter) (models.Page[models.User], error)
	UpdateUserRole(ctx context.Context, actor Actor, userID int, role models.UserRole) (*models.User, error)
	DeleteUser(ctx context.Context, actor Actor, userID int) error
}

type adminUserService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAdminUserService(userRepo repositories.UserRepository, logger *slog.Logger) AdminUserService {
	return &adminUserService{userRepo: userRepo, logger: logger}
}

func (s *adminUserService) ListUsers(ctx context.Context, filter models.UserFilter) (models.Page[models.User], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, total, filter.PageRequest), nil
}

func (s *adminUserService) UpdateUserRole(ctx context.Context, actor Actor, userID int, role models.UserRole) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "user role changed",
		slog.Int("user_id", userID), slog.String("role", string(role)), slog.Int("by", actor.UserID))

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

func (s *adminUserService) DeleteUser(ctx context.Context, actor Actor, userID int) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}
	if actor.UserID == userID {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "user deleted", slog.Int("user_id", userID), slog.Int("by", actor.UserID))
	return nil
}
