package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/football-tournaments/services"
)

type InviteHandler struct {
	inviteService services.InvitationService
}

func NewInviteHandler(is services.InvitationService) *InviteHandler {
	return &InviteHandler{inviteService: is}
}

// Create обрабатывает POST /clubs/{clubID}/invitations
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateInvitationInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	invite, err := h.inviteService.Create(r.Context(), actor, clubID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusCreated, invite)
}

func (h *InviteHandler) ListByClub(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	invites, err := h.inviteService.ListByClub(r.Context(), actor, clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, invites)
}

func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "invitation")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.inviteService.Revoke(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]int{"id": id})
}

// Preview доступен без авторизации: страница приглашения показывает клуб до входа.
func (h *InviteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "invitation")
	if token == "" {
		badRequestResponse(w, r, errors.New("missing invitation token"))
		return
	}
	invite, err := h.inviteService.Preview(r.Context(), token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, invite)
}

func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "invitation")
	if token == "" {
		badRequestResponse(w, r, errors.New("missing invitation token"))
		return
	}
	invite, err := h.inviteService.Accept(r.Context(), actor, token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, invite)
}
