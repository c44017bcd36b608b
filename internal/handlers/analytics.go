package handlers

import (
	"net/http"

	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview serves totals, subject stats, the last 7 days and insights.
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetCurrentUser(r.Context())

	overview, err := h.analytics.Overview(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *AnalyticsHandler) WeakSubjects(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetCurrentUser(r.Context())

	subjects, err := h.analytics.WeakStrongSubjects(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *AnalyticsHandler) ConsistencyScore(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetCurrentUser(r.Context())

	score, err := h.analytics.ConsistencyScore(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (h *AnalyticsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetCurrentUser(r.Context())

	recs, err := h.analytics.Recommendations(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
