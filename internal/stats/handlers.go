package stats

import (
	"net/http"

	"crosspost/internal/common"
)

type Handler struct {
	service StatsService
}

func NewHandler(service StatsService) *Handler {
	return &Handler{service: service}
}

// Dashboard handles GET /stats
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, stats)
}

// Activity handles GET /stats/activity
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFrom(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	activity, err := h.service.RecentActivity(r.Context(), userID)
	if err != nil {
		common.WriteError(w, common.HTTPStatus(err), err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, activity)
}
