package handler

import (
	"net/http"

	"github.com/vicu/vicu-api/internal/service"
)

type RecommendationHandler struct {
	recommendationService *service.RecommendationService
}

func NewRecommendationHandler(recommendationService *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

func (h *RecommendationHandler) Current(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	rec, err := h.recommendationService.Current(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "failed to load recommendation")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecommendationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	rec, err := h.recommendationService.Refresh(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "failed to refresh recommendation")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecommendationHandler) History(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	history, err := h.recommendationService.History(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "failed to load recommendation history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": history})
}
