package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studytrack-backend/internal/middleware"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/services"
)

type StudySessionHandler struct {
	studyService *services.StudyService
}

func NewStudySessionHandler(studyService *services.StudyService) *StudySessionHandler {
	return &StudySessionHandler{studyService: studyService}
}

func (h *StudySessionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetCurrentUser(r.Context())

	sessions, err := h.studyService.List(r.Context(), user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

func (h *StudySessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetCurrentUser(r.Context())

	var req models.StudySessionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.studyService.Create(r.Context(), user, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *StudySessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetCurrentUser(r.Context())

	var req models.StudySessionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.studyService.Update(r.Context(), user, chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *StudySessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetCurrentUser(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.studyService.Delete(r.Context(), user, id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
