package handlers

import (
	"net/http"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(clubService services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

// ListClubs godoc
// @Summary  List clubs
// @Tags     clubs
// @Produce  json
// @Param    search   query string false "name or city"
// @Param    country  query string false "country"
// @Param    page     query int    false "page"
// @Param    pageSize query int    false "page size"
// @Success  200 {object} envelope
// @Router   /clubs [get]
func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := readPageRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	q := r.URL.Query()
	clubs, err := h.clubService.List(r.Context(), models.ClubFilter{
		Search:      q.Get("search"),
		Country:     q.Get("country"),
		PageRequest: page,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, clubs)
}

func (h *ClubHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	page, err := readPageRequest(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	clubs, err := h.clubService.ListMine(r.Context(), actor, page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, clubs)
}

func (h *ClubHandler) Get(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	club, err := h.clubService.GetByID(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, club)
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.CreateClubInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	club, err := h.clubService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusCreated, club)
}

func (h *ClubHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateClubInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	club, err := h.clubService.Update(r.Context(), actor, clubID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, club)
}

func (h *ClubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.clubService.Delete(r.Context(), actor, clubID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]int{"id": clubID})
}

// UploadLogo принимает multipart-поле "logo" (PNG/JPEG/WebP, до 5MB).
func (h *ClubHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, ok := formLogo(w, r)
	if !ok {
		return
	}
	defer file.Close()

	club, err := h.clubService.UploadLogo(r.Context(), actor, clubID, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, club)
}
