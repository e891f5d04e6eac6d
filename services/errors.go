package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters long")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrEmailAlreadyConfirmed = errors.New("email already confirmed")

	// Ошибки конфликтов
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrClubNameConflict       = errors.New("club name is already in use")
	ErrClubHasRegistrations   = errors.New("club has registrations and cannot be deleted")
	ErrUserHasReferences      = errors.New("user manages clubs, organizes tournaments or sent invitations and cannot be deleted")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrAgeGroupNameConflict   = errors.New("age group name already exists in this tournament")
	ErrRegistrationConflict   = errors.New("team is already registered in this age group")
	ErrInvitationPending      = errors.New("a pending invitation for this email already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrCannotDeleteSelf     = errors.New("administrators cannot delete their own account")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound         = errors.New("user not found")
	ErrClubNotFound         = errors.New("club not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrAgeGroupNotFound     = errors.New("age group not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvitationNotFound   = errors.New("invitation not found")

	// Турниры
	ErrTournamentDatesRequired           = errors.New("tournament dates are required")
	ErrTournamentInvalidRegDate          = errors.New("registration deadline must not be after the start date")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotDeletable            = errors.New("only draft or cancelled tournaments can be deleted")
	ErrTournamentLocked                  = errors.New("tournament can no longer be modified")

	// Регистрации
	ErrRegistrationNotOpen           = errors.New("tournament registration is not open")
	ErrAgeGroupFull                  = errors.New("age group is full")
	ErrRegistrationInvalidStatus     = errors.New("invalid registration status provided")
	ErrRegistrationInvalidTransition = errors.New("invalid registration status transition")
	ErrRegistrationNotPending        = errors.New("registration can only be changed while pending")
	ErrRegistrationInvalidPayment    = errors.New("invalid payment status provided")
	ErrRegistrationAgeGroupMismatch  = errors.New("age group does not belong to the tournament")

	// Корзины и жеребьевка
	ErrInvalidPotNumber        = errors.New("pot number must be between 1 and 4")
	ErrRegistrationNotApproved = errors.New("only approved registrations can be placed in a pot")
	ErrDrawNotReady            = errors.New("pot distribution is not ready for a draw")
	ErrDrawAlreadyCompleted    = errors.New("draw has already been completed for this age group")
	ErrDrawNotCompleted        = errors.New("draw has not been completed for this age group")
	ErrNumberOfGroupsLocked    = errors.New("number of groups cannot change after the draw")

	// Приглашения
	ErrInvitationExpired       = errors.New("invitation has expired")
	ErrInvitationNotPending    = errors.New("invitation is no longer pending")
	ErrInvitationEmailMismatch = errors.New("invitation was sent to a different email address")

	// Файлы
	ErrUploadsDisabled = errors.New("file uploads are not configured")
)

// DrawNotReadyError несёт причины, по которым жеребьевка невозможна.
type DrawNotReadyError struct {
	Reasons []string
}

func (e *DrawNotReadyError) Error() string {
	return ErrDrawNotReady.Error()
}

func (e *DrawNotReadyError) Unwrap() error {
	return ErrDrawNotReady
}
