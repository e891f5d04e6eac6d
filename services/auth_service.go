package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/utils"
)

const (
	minPasswordLength = 8
	passwordResetTTL  = time.Hour
	secureTokenBytes  = 32
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, claims *TokenClaims) error
	// Authenticate разбирает токен и проверяет, что он не отозван.
	Authenticate(ctx context.Context, token string) (*TokenClaims, error)
	Me(ctx context.Context, userID int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID int, input ChangePasswordInput) error
	ConfirmEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}

type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type UpdateProfileInput struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type authService struct {
	userRepo    repositories.UserRepository
	revokedRepo repositories.RevokedTokenRepository
	tokens      *TokenManager
	email       *EmailService
	logger      *slog.Logger
	now         func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	revokedRepo repositories.RevokedTokenRepository,
	tokens *TokenManager,
	email *EmailService,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		revokedRepo: revokedRepo,
		tokens:      tokens,
		email:       email,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	confirmationToken, err := utils.GenerateSecureToken(secureTokenBytes)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:              strings.TrimSpace(input.FirstName),
		LastName:               strings.TrimSpace(input.LastName),
		Email:                  normalizeEmail(input.Email),
		PasswordHash:           hashedPassword,
		Role:                   models.RoleClubManager,
		EmailConfirmed:         false,
		EmailConfirmationToken: &confirmationToken,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	s.email.SendWelcomeEmail(ctx, user.FullName(), user.Email, confirmationToken)
	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID))
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

func (s *authService) Logout(ctx context.Context, claims *TokenClaims) error {
	if claims == nil {
		return ErrAuthenticationFailed
	}
	if err := s.revokedRepo.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revokedRepo.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrAuthenticationFailed
	}

	// роль в токене могла устареть: берём актуальную из базы
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}
	claims.Role = user.Role
	return claims, nil
}

func (s *authService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, fmt.Errorf("%w: first name must not be empty", ErrValidationFailed)
		}
		user.FirstName = name
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int, input ChangePasswordInput) error {
	if len(input.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return mapRepoError(err)
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return mapRepoError(s.userRepo.Update(ctx, user))
}

func (s *authService) ConfirmEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.GetByConfirmationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if user.EmailConfirmed {
		return ErrEmailAlreadyConfirmed
	}
	user.EmailConfirmed = true
	user.EmailConfirmationToken = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

// ForgotPassword не раскрывает, зарегистрирован ли email.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return err
	}
	resetToken, err := utils.GenerateSecureToken(secureTokenBytes)
	if err != nil {
		return err
	}
	expires := s.now().Add(passwordResetTTL)
	user.PasswordResetToken = &resetToken
	user.PasswordResetExpiresAt = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	s.email.SendPasswordResetEmail(ctx, user.Email, resetToken)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if len(input.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	user, err := s.userRepo.GetByPasswordResetToken(ctx, input.Token)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if user.PasswordResetExpiresAt == nil || user.PasswordResetExpiresAt.Before(s.now()) {
		return ErrInvalidToken
	}
	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.PasswordResetToken = nil
	user.PasswordResetExpiresAt = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return nil
}
