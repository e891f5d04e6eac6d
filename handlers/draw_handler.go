package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/football-tournaments/services"
)

type DrawHandler struct {
	drawService services.DrawService
}

func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: drawService}
}

// setPotInput: potNumber = null убирает команду из корзины.
type setPotInput struct {
	PotNumber *int `json:"potNumber" validate:"omitempty,min=1,max=4"`
}

// GetPots godoc
// @Summary  Pots of an age group with draw readiness
// @Tags     draw
// @Produce  json
// @Param    ageGroupID path int true "age group"
// @Success  200 {object} envelope
// @Failure  404 {object} envelope
// @Router   /age-groups/{ageGroupID}/pots [get]
func (h *DrawHandler) GetPots(w http.ResponseWriter, r *http.Request) {
	ageGroupID, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	overview, err := h.drawService.GetPots(r.Context(), ageGroupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, overview)
}

func (h *DrawHandler) SetPot(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input setPotInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	reg, err := h.drawService.SetPot(r.Context(), actor, registrationID, input.PotNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, reg)
}

func (h *DrawHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	ageGroupID, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.BulkAssignPotsInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	overview, err := h.drawService.BulkAssignPots(r.Context(), actor, ageGroupID, input.Assignments)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, overview)
}

func (h *DrawHandler) ClearPots(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	ageGroupID, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	overview, err := h.drawService.ClearPots(r.Context(), actor, ageGroupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, overview)
}

// ExecuteDraw godoc
// @Summary  Run the group draw for an age group
// @Tags     draw
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    ageGroupID path int                       true  "age group"
// @Param    input      body services.ExecuteDrawInput false "optional seed"
// @Success  200 {object} envelope
// @Failure  401 {object} envelope
// @Failure  404 {object} envelope
// @Failure  409 {object} envelope
// @Failure  422 {object} envelope
// @Router   /age-groups/{ageGroupID}/draw [post]
func (h *DrawHandler) ExecuteDraw(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	ageGroupID, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// тело необязательно: без seed он генерируется сервером
	var input services.ExecuteDrawInput
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil && !errors.Is(err, errEmptyBody) {
			badRequestResponse(w, r, err)
			return
		}
	}

	result, err := h.drawService.ExecuteDraw(r.Context(), actor, ageGroupID, input.Seed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, result)
}

func (h *DrawHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	ageGroupID, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	groups, err := h.drawService.GetGroups(r.Context(), ageGroupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, groups)
}

func (h *DrawHandler) ResetDraw(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	ageGroupID, err := getIDFromURL(r, "ageGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.drawService.ResetDraw(r.Context(), actor, ageGroupID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]int{"ageGroupId": ageGroupID})
}
