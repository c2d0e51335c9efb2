package handler

import (
	"net/http"
	"strconv"

	"github.com/vicu/vicu-api/internal/ctxkeys"
	"github.com/vicu/vicu-api/internal/service"
)

const (
	defaultXPEventsLimit = 50
	maxXPEventsLimit     = 200
)

type MeHandler struct {
	statsService   *service.StatsService
	profileService *service.ProfileService
}

func NewMeHandler(statsService *service.StatsService, profileService *service.ProfileService) *MeHandler {
	return &MeHandler{
		statsService:   statsService,
		profileService: profileService,
	}
}

// Stats never fails: anonymous callers and slow reads get an empty snapshot.
func (h *MeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.statsService.Get(r.Context(), ctxkeys.Identity(r.Context()))
	writeJSON(w, http.StatusOK, stats)
}

func (h *MeHandler) XPEvents(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	limit := defaultXPEventsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Límite no válido", Field: "limit"})
			return
		}
		limit = min(n, maxXPEventsLimit)
	}

	events, err := h.statsService.XPEvents(r.Context(), uid, limit)
	if err != nil {
		writeError(w, r, err, "failed to load xp events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *MeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	profile, err := h.profileService.ByUserID(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *MeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req service.UpdateProfileInput
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.Update(r.Context(), uid, req)
	if err != nil {
		writeError(w, r, err, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
