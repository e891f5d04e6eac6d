package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/services"
)

type AdminHandler struct {
	adminService services.AdminUserService
}

func NewAdminHandler(adminService services.AdminUserService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

type updateRoleInput struct {
	Role models.UserRole `json:"role" validate:"required,oneof=admin organizer club_manager"`
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := readPageRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter := models.UserFilter{Search: r.URL.Query().Get("search"), PageRequest: page}
	if roleStr := r.URL.Query().Get("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		if !role.Valid() {
			badRequestResponse(w, r, errors.New("invalid role query parameter"))
			return
		}
		filter.Role = &role
	}

	users, err := h.adminService.ListUsers(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, users)
}

func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input updateRoleInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	user, err := h.adminService.UpdateUserRole(r.Context(), actor, userID, input.Role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.adminService.DeleteUser(r.Context(), actor, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]int{"id": userID})
}
