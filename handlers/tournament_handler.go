package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

type updateTournamentStatusInput struct {
	Status models.TournamentStatus `json:"status" validate:"required"`
}

// List обрабатывает GET /tournaments
// @Summary  List tournaments
// @Tags     tournaments
// @Produce  json
// @Param    search      query string false "name or location"
// @Param    status      query string false "tournament status"
// @Param    organizerId query int    false "organizer"
// @Success  200 {object} envelope
// @Router   /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := readPageRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter := models.TournamentFilter{Search: r.URL.Query().Get("search"), PageRequest: page}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.TournamentStatus(statusStr)
		if !status.Valid() {
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
		filter.Status = &status
	}
	if filter.OrganizerID, err = queryIntPtr(r, "organizerId"); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, tournaments)
}

// Get обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, tournament)
}

// Create обрабатывает POST /tournaments
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.CreateTournamentInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	tournament, err := h.tournamentService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusCreated, tournament)
}

// Update обрабатывает PATCH /tournaments/{tournamentID}
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateTournamentInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	tournament, err := h.tournamentService.Update(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, tournament)
}

// UpdateStatus обрабатывает PATCH /tournaments/{tournamentID}/status
func (h *TournamentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input updateTournamentStatusInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	tournament, err := h.tournamentService.UpdateStatus(r.Context(), actor, id, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, tournament)
}

// Delete обрабатывает DELETE /tournaments/{tournamentID}
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.Delete(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]int{"id": id})
}

func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, ok := formLogo(w, r)
	if !ok {
		return
	}
	defer file.Close()

	tournament, err := h.tournamentService.UploadLogo(r.Context(), actor, id, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, tournament)
}
