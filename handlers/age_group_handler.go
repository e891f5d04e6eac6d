package handlers

import (
	"net/http"

	"github.com/Dosada05/football-tournaments/services"
)

type AgeGroupHandler struct {
	ageGroupService services.AgeGroupService
}

func NewAgeGroupHandler(ageGroupService services.AgeGroupService) *AgeGroupHandler {
	return &AgeGroupHandler{ageGroupService: ageGroupService}
}

func (h *AgeGroupHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	groups, err := h.ageGroupService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, groups)
}

func (h *AgeGroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateAgeGroupInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	ag, err := h.ageGroupService.Create(r.Context(), actor, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusCreated, ag)
}

func (h *AgeGroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	ag, err := h.ageGroupService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, ag)
}

func (h *AgeGroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateAgeGroupInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	ag, err := h.ageGroupService.Update(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, ag)
}

func (h *AgeGroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.ageGroupService.Delete(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]int{"id": id})
}
