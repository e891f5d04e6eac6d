package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/storage"
)

// Actor: аутентифицированный пользователь, от имени которого выполняется операция.
type Actor struct {
	UserID int
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) IsOrganizer() bool {
	return a.Role == models.RoleOrganizer
}

// canManageTournament: админ или организатор именно этого турнира.
func (a Actor) canManageTournament(t *models.Tournament) bool {
	return a.IsAdmin() || (a.IsOrganizer() && t.OrganizerID == a.UserID)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateTournamentDates(deadline, start, end time.Time) error {
	if deadline.IsZero() || start.IsZero() || end.IsZero() {
		return ErrTournamentDatesRequired
	}
	if deadline.After(start) {
		return fmt.Errorf("%w: registration deadline (%s) cannot be after start date (%s)",
			ErrTournamentInvalidRegDate, deadline.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start date (%s) must be before end date (%s)",
			ErrTournamentInvalidDateRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	if next == models.TournamentCancelled {
		return !current.Terminal()
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentDraft:              {models.TournamentRegistrationOpen},
		models.TournamentRegistrationOpen:   {models.TournamentRegistrationClosed},
		models.TournamentRegistrationClosed: {models.TournamentInProgress},
		models.TournamentInProgress:         {models.TournamentCompleted},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func isValidRegistrationTransition(current, next models.RegistrationStatus) bool {
	switch current {
	case models.RegistrationPending:
		return next == models.RegistrationApproved || next == models.RegistrationRejected || next == models.RegistrationWithdrawn
	case models.RegistrationApproved:
		return next == models.RegistrationWithdrawn
	}
	return false
}

func populateLogoURL(logoKey *string, logoURL **string, uploader storage.FileUploader) {
	if logoKey == nil || *logoKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*logoKey); url != "" {
		*logoURL = &url
	}
}

func populateClubLogoURL(club *models.Club, uploader storage.FileUploader) {
	if club != nil {
		populateLogoURL(club.LogoKey, &club.LogoURL, uploader)
	}
}

func populateTournamentLogoURL(t *models.Tournament, uploader storage.FileUploader) {
	if t != nil {
		populateLogoURL(t.LogoKey, &t.LogoURL, uploader)
	}
}

// uploadLogo загружает картинку и возвращает новый ключ. Старый объект
// удаляется вызывающей стороной после сохранения ключа в БД.
func uploadLogo(ctx context.Context, uploader storage.FileUploader, entity string, id int, file io.Reader) (string, error) {
	if uploader == nil {
		return "", ErrUploadsDisabled
	}
	// PutObject требует seekable body, поэтому файл (до 5MB) читаем в память.
	data, err := io.ReadAll(io.LimitReader(file, storage.MaxLogoSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read logo: %w", err)
	}
	if len(data) > storage.MaxLogoSize {
		return "", fmt.Errorf("%w: %v", ErrValidationFailed, storage.ErrFileTooLarge)
	}
	contentType, ext, _, err := storage.SniffImage(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedFormat) {
			return "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return "", err
	}
	key := storage.LogoKey(entity, id, ext)
	if _, err := uploader.Upload(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}
	return key, nil
}

func deleteOldLogo(ctx context.Context, uploader storage.FileUploader, oldKey *string, logger *slog.Logger) {
	if oldKey == nil || *oldKey == "" || uploader == nil {
		return
	}
	if err := uploader.Delete(ctx, *oldKey); err != nil {
		logger.WarnContext(ctx, "failed to delete old logo", slog.String("key", *oldKey), slog.Any("error", err))
	}
}

// mapRepoError переводит ошибки репозиториев в ошибки сервисного слоя.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, repositories.ErrUserHasReferences):
		return ErrUserHasReferences
	case errors.Is(err, repositories.ErrClubNotFound):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrClubNameConflict):
		return ErrClubNameConflict
	case errors.Is(err, repositories.ErrClubHasRegistrations):
		return ErrClubHasRegistrations
	case errors.Is(err, repositories.ErrClubManagerInvalid):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrRegistrationTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentOrganizerInvalid):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrAgeGroupNotFound):
		return ErrAgeGroupNotFound
	case errors.Is(err, repositories.ErrAgeGroupNameConflict):
		return ErrAgeGroupNameConflict
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return ErrRegistrationConflict
	case errors.Is(err, repositories.ErrRegistrationClubInvalid):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrRegistrationPotInvalid):
		return ErrInvalidPotNumber
	case errors.Is(err, repositories.ErrDrawGroupConflict):
		return ErrDrawAlreadyCompleted
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return ErrNotificationNotFound
	case errors.Is(err, repositories.ErrInvitationNotFound):
		return ErrInvitationNotFound
	case errors.Is(err, repositories.ErrInvitationPending):
		return ErrInvitationPending
	case errors.Is(err, storage.ErrUploadsDisabled):
		return ErrUploadsDisabled
	}
	return err
}
