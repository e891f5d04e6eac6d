package handlers

import (
	"net/http"

	"github.com/Dosada05/football-tournaments/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(s services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: s}
}

// Stats godoc
// @Summary  Dashboard counters for the current user
// @Tags     dashboard
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} envelope
// @Router   /dashboard/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	stats, err := h.dashboardService.GetStats(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, r, http.StatusOK, stats)
}
