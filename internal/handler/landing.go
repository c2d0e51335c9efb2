package handler

import (
	"net/http"

	"github.com/vicu/vicu-api/internal/service"
)

// LandingHandler serves the public endpoints embedded in landing pages.
// Callers are anonymous.
type LandingHandler struct {
	landingService *service.LandingService
}

func NewLandingHandler(landingService *service.LandingService) *LandingHandler {
	return &LandingHandler{landingService: landingService}
}

func (h *LandingHandler) Visit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.landingService.RecordVisit(r.Context(), r.PathValue("id"), req.Source); err != nil {
		writeError(w, r, err, "failed to record visit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LandingHandler) Lead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contact string `json:"contact"`
		Source  string `json:"source"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.landingService.RecordLead(r.Context(), r.PathValue("id"), req.Contact, req.Source); err != nil {
		writeError(w, r, err, "failed to record lead")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"received": true})
}
