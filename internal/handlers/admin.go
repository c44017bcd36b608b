package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"studytrack-backend/internal/services"
)

// AdminHandler serves the cross-user endpoints. Routes are guarded by
// middleware.RequireAdmin.
type AdminHandler struct {
	studyService *services.StudyService
	analytics    *services.AnalyticsService
}

func NewAdminHandler(studyService *services.StudyService, analytics *services.AnalyticsService) *AdminHandler {
	return &AdminHandler{studyService: studyService, analytics: analytics}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.studyService.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) ListStudies(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.studyService.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *AdminHandler) DeleteStudy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.studyService.DeleteAny(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	rollup, err := h.analytics.AdminRollup(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rollup)
}
