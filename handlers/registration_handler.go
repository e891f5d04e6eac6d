package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

type updatePaymentInput struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"required"`
}

// List godoc
// @Summary  List team registrations
// @Tags     registrations
// @Produce  json
// @Security BearerAuth
// @Param    tournamentId query int    false "tournament"
// @Param    ageGroupId   query int    false "age group"
// @Param    clubId       query int    false "club"
// @Param    status       query string false "pending|approved|rejected|withdrawn"
// @Param    search       query string false "team or club name"
// @Success  200 {object} envelope
// @Router   /registrations [get]
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	page, err := readPageRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter := models.RegistrationFilter{Search: r.URL.Query().Get("search"), PageRequest: page}
	if filter.TournamentID, err = queryIntPtr(r, "tournamentId"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.AgeGroupID, err = queryIntPtr(r, "ageGroupId"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.ClubID, err = queryIntPtr(r, "clubId"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.RegistrationStatus(statusStr)
		if !status.Valid() {
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
		filter.Status = &status
	}

	regs, err := h.registrationService.List(r.Context(), actor, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, regs)
}

func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	reg, err := h.registrationService.GetByID(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, reg)
}

func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.CreateRegistrationInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	reg, err := h.registrationService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusCreated, reg)
}

func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateRegistrationInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	reg, err := h.registrationService.Update(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, reg)
}

// UpdateStatus: одобрение, отклонение или отзыв заявки.
func (h *RegistrationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateRegistrationStatusInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	reg, err := h.registrationService.UpdateStatus(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, reg)
}

func (h *RegistrationHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input updatePaymentInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	reg, err := h.registrationService.UpdatePaymentStatus(r.Context(), actor, id, input.PaymentStatus)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, reg)
}

func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.registrationService.Delete(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]int{"id": id})
}
