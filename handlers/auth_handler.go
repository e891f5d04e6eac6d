package handlers

import (
	"net/http"

	"github.com/Dosada05/football-tournaments/middleware"
	"github.com/Dosada05/football-tournaments/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type forgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// Register godoc
// @Summary  Register a club manager account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    input body services.RegisterInput true "account"
// @Success  201 {object} envelope
// @Failure  409 {object} envelope
// @Failure  422 {object} envelope
// @Router   /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusCreated, user)
}

// Login godoc
// @Summary  Log in and receive a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    input body services.LoginInput true "credentials"
// @Success  200 {object} envelope
// @Failure  401 {object} envelope
// @Router   /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.GetClaims(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	if err := h.authService.Logout(r.Context(), claims); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	user, err := h.authService.Me(r.Context(), actor.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, user)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.UpdateProfileInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	user, err := h.authService.UpdateProfile(r.Context(), actor.UserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.ChangePasswordInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	if err := h.authService.ChangePassword(r.Context(), actor.UserID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		failedValidationResponse(w, r, map[string]string{"token": "is required"})
		return
	}
	if err := h.authService.ConfirmEmail(r.Context(), token); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]string{"message": "email confirmed"})
}

// ForgotPassword всегда отвечает 200, даже для неизвестного адреса.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input forgotPasswordInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	if err := h.authService.ForgotPassword(r.Context(), input.Email); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]string{
		"message": "if the address is registered, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input services.ResetPasswordInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	if err := h.authService.ResetPassword(r.Context(), input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]string{"message": "password has been reset"})
}
