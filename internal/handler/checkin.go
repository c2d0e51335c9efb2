package handler

import (
	"net/http"

	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/service"
)

type CheckinHandler struct {
	checkinService *service.CheckinService
	stageService   *service.StageService
}

func NewCheckinHandler(checkinService *service.CheckinService, stageService *service.StageService) *CheckinHandler {
	return &CheckinHandler{
		checkinService: checkinService,
		stageService:   stageService,
	}
}

func (h *CheckinHandler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.checkinService.CompleteStep(r.Context(), uid, r.PathValue("id"), r.PathValue("checkinID"), req.Notes)
	if err != nil {
		writeError(w, r, err, "failed to complete step")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CheckinHandler) GenerateSteps(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		Situation string `json:"situation"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	steps, source, err := h.checkinService.GenerateSteps(r.Context(), uid, r.PathValue("id"), req.Situation)
	if err != nil {
		writeError(w, r, err, "failed to generate steps")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"steps": steps, "source": source})
}

// Transition moves the goal to "to", or to the recommended stage when the
// body names none.
func (h *CheckinHandler) Transition(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		To string `json:"to"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	to := model.Stage(req.To)
	if to != "" && !to.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Etapa no válida", Field: "to"})
		return
	}

	res, err := h.stageService.AcceptTransition(r.Context(), uid, r.PathValue("id"), to)
	if err != nil {
		writeError(w, r, err, "failed to change stage")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
