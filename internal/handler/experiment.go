package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/vicu/vicu-api/internal/service"
	"github.com/vicu/vicu-api/internal/validation"
)

type ExperimentHandler struct {
	experimentService *service.ExperimentService
	landingService    *service.LandingService
}

func NewExperimentHandler(experimentService *service.ExperimentService, landingService *service.LandingService) *ExperimentHandler {
	return &ExperimentHandler{
		experimentService: experimentService,
		landingService:    landingService,
	}
}

type createExperimentRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	SurfaceType    string  `json:"surface_type"`
	ExperimentType string  `json:"experiment_type"`
	Context        string  `json:"context"`
	Effort         string  `json:"effort"`
	Deadline       *string `json:"deadline"`
}

// parseDate reads a YYYY-MM-DD date. Empty means no date.
func parseDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(*s))
	if err != nil {
		return nil, &validation.Error{Field: "deadline", Message: "Usa el formato AAAA-MM-DD para la fecha"}
	}
	return &d, nil
}

func (h *ExperimentHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req createExperimentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	detail, err := h.experimentService.Create(r.Context(), uid, service.CreateExperimentInput{
		Title:          req.Title,
		Description:    req.Description,
		SurfaceType:    req.SurfaceType,
		ExperimentType: req.ExperimentType,
		Context:        req.Context,
		Effort:         req.Effort,
		Deadline:       deadline,
	})
	if err != nil {
		writeError(w, r, err, "failed to create goal")
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (h *ExperimentHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	experiments, err := h.experimentService.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, "failed to list goals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"experiments": experiments})
}

func (h *ExperimentHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	detail, err := h.experimentService.Detail(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "failed to load goal")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type updateExperimentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	// Deadline "" drops the user date and falls back to the suggested one.
	Deadline            *string `json:"deadline"`
	ActionCadence       *string `json:"action_cadence"`
	MetricsCadence      *string `json:"metrics_cadence"`
	DecisionCadenceDays *int    `json:"decision_cadence_days"`
}

func (h *ExperimentHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req updateExperimentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := service.UpdateExperimentInput{
		Title:               req.Title,
		Description:         req.Description,
		ActionCadence:       req.ActionCadence,
		MetricsCadence:      req.MetricsCadence,
		DecisionCadenceDays: req.DecisionCadenceDays,
	}
	if req.Deadline != nil {
		deadline, err := parseDate(req.Deadline)
		if err != nil {
			writeError(w, r, err, "")
			return
		}
		in.Deadline = deadline
		in.ClearDeadline = deadline == nil
	}

	e, err := h.experimentService.Update(r.Context(), uid, r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err, "failed to update goal")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *ExperimentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.experimentService.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		writeError(w, r, err, "failed to delete goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExperimentHandler) SetSelfResult(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req struct {
		SelfResult string `json:"self_result"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := h.experimentService.SetSelfResult(r.Context(), uid, r.PathValue("id"), strings.TrimSpace(req.SelfResult))
	if err != nil {
		writeError(w, r, err, "failed to save self result")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *ExperimentHandler) CompleteAction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	action, err := h.experimentService.CompleteAction(r.Context(), uid, r.PathValue("id"), r.PathValue("actionID"))
	if err != nil {
		writeError(w, r, err, "failed to complete action")
		return
	}
	writeJSON(w, http.StatusOK, action)
}

func (h *ExperimentHandler) LandingCounts(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	counts, err := h.landingService.Counts(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "failed to load landing counts")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
