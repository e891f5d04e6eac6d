package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Dosada05/football-tournaments/middleware"
	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/services"
)

// Коды ошибок в конверте ответа.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeDrawNotReady       = "DRAW_NOT_READY"
	CodeUploadsDisabled    = "UPLOADS_DISABLED"
	CodeInternal           = "INTERNAL_ERROR"
)

const maxBodyBytes = 1_048_576 // 1MB

var validate = validator.New(validator.WithRequiredStructEnabled())

var errEmptyBody = errors.New("body must not be empty")

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// envelope: общий вид ответа API: { success, data } или { success: false, error }.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errEmptyBody
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// decodeAndValidate читает тело и проверяет validate-теги; ответ об ошибке уже записан, если вернулось false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := readJSON(w, r, dst); err != nil {
		badRequestResponse(w, r, err)
		return false
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			failedValidationResponse(w, r, validationDetails(verrs))
			return false
		}
		badRequestResponse(w, r, err)
		return false
	}
	return true
}

func validationDetails(verrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "email":
			details[field] = "must be a valid email address"
		case "min", "max", "len":
			details[field] = fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
		default:
			details[field] = fmt.Sprintf("failed on '%s'", fe.Tag())
		}
	}
	return details
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func successResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, envelope{Success: true, Data: data}, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	env := envelope{Error: &apiError{Code: code, Message: message, Details: details}}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, CodeInternal, message, nil)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, details map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, CodeValidation, "request validation failed", details)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusNotFound, CodeNotFound, message, nil)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	notFoundResponse(w, r, "the requested resource could not be found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		fmt.Sprintf("the %s method is not supported for this resource", r.Method), nil)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var notReady *services.DrawNotReadyError
	switch {
	case errors.As(err, &notReady):
		errorResponse(w, r, http.StatusUnprocessableEntity, CodeDrawNotReady, err.Error(),
			map[string]interface{}{"reasons": notReady.Reasons})

	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrClubNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrAgeGroupNotFound),
		errors.Is(err, services.ErrRegistrationNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrInvitationNotFound):
		notFoundResponse(w, r, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		errorResponse(w, r, http.StatusUnauthorized, CodeInvalidCredentials, err.Error(), nil)
	case errors.Is(err, services.ErrAuthenticationFailed):
		unauthorizedResponse(w, r, err.Error())

	case errors.Is(err, services.ErrForbiddenOperation),
		errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, services.ErrInvitationEmailMismatch):
		errorResponse(w, r, http.StatusForbidden, CodeForbidden, err.Error(), nil)

	// Конфликты
	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrClubNameConflict),
		errors.Is(err, services.ErrClubHasRegistrations),
		errors.Is(err, services.ErrUserHasReferences),
		errors.Is(err, services.ErrTournamentNameConflict),
		errors.Is(err, services.ErrAgeGroupNameConflict),
		errors.Is(err, services.ErrRegistrationConflict),
		errors.Is(err, services.ErrInvitationPending),
		errors.Is(err, services.ErrInvitationNotPending),
		errors.Is(err, services.ErrEmailAlreadyConfirmed),
		errors.Is(err, services.ErrTournamentInvalidStatusTransition),
		errors.Is(err, services.ErrTournamentNotDeletable),
		errors.Is(err, services.ErrTournamentLocked),
		errors.Is(err, services.ErrAgeGroupFull),
		errors.Is(err, services.ErrRegistrationInvalidTransition),
		errors.Is(err, services.ErrRegistrationNotPending),
		errors.Is(err, services.ErrDrawAlreadyCompleted),
		errors.Is(err, services.ErrDrawNotCompleted),
		errors.Is(err, services.ErrNumberOfGroupsLocked):
		errorResponse(w, r, http.StatusConflict, CodeConflict, err.Error(), nil)

	// Невалидные данные
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrTournamentDatesRequired),
		errors.Is(err, services.ErrTournamentInvalidRegDate),
		errors.Is(err, services.ErrTournamentInvalidDateRange),
		errors.Is(err, services.ErrTournamentInvalidStatus),
		errors.Is(err, services.ErrRegistrationInvalidStatus),
		errors.Is(err, services.ErrRegistrationInvalidPayment),
		errors.Is(err, services.ErrInvalidPotNumber):
		errorResponse(w, r, http.StatusUnprocessableEntity, CodeValidation, err.Error(), nil)

	// Бизнес-правила
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrRegistrationNotOpen),
		errors.Is(err, services.ErrRegistrationAgeGroupMismatch),
		errors.Is(err, services.ErrRegistrationNotApproved),
		errors.Is(err, services.ErrInvitationExpired):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrUploadsDisabled):
		errorResponse(w, r, http.StatusServiceUnavailable, CodeUploadsDisabled, err.Error(), nil)

	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be positive", paramName)
	}
	return id, nil
}

// actorOrUnauthorized достаёт пользователя из контекста; при ошибке ответ уже записан.
func actorOrUnauthorized(w http.ResponseWriter, r *http.Request) (services.Actor, bool) {
	actor, err := middleware.GetActor(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return services.Actor{}, false
	}
	return actor, true
}

func readPageRequest(r *http.Request) (models.PageRequest, error) {
	var page models.PageRequest
	var err error
	if page.Page, err = queryInt(r, "page"); err != nil {
		return page, err
	}
	if page.Page > models.MaxPage {
		return page, fmt.Errorf("page must not exceed %d", models.MaxPage)
	}
	if page.PageSize, err = queryInt(r, "pageSize"); err != nil {
		return page, err
	}
	return page.Normalize(), nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s query parameter", name)
	}
	return v, nil
}

// queryIntPtr возвращает nil, если параметр не задан.
func queryIntPtr(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return nil, fmt.Errorf("invalid %s query parameter", name)
	}
	return &v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s query parameter", name)
	}
	return v, nil
}
