package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vicu/vicu-api/internal/ctxkeys"
	"github.com/vicu/vicu-api/internal/repository"
	"github.com/vicu/vicu-api/internal/service"
	"github.com/vicu/vicu-api/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeMessage(w, http.StatusBadRequest, "El cuerpo de la solicitud no es válido")
	return false
}

// writeError maps service and repository errors to responses. Anything
// unexpected is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, repository.ErrExperimentNotFound):
		writeMessage(w, http.StatusNotFound, "Meta no encontrada")
	case errors.Is(err, repository.ErrCheckinNotFound):
		writeMessage(w, http.StatusNotFound, "Paso no encontrado")
	case errors.Is(err, repository.ErrActionNotFound):
		writeMessage(w, http.StatusNotFound, "Acción no encontrada")
	case errors.Is(err, repository.ErrRecommendationNotFound):
		writeMessage(w, http.StatusNotFound, "Todavía no hay recomendación")
	case errors.Is(err, service.ErrNotLanding):
		writeMessage(w, http.StatusNotFound, "Esta meta no tiene página")
	case errors.Is(err, service.ErrAnonymous):
		writeMessage(w, http.StatusUnauthorized, "Inicia sesión para continuar")
	case errors.Is(err, service.ErrExperimentClosed):
		writeMessage(w, http.StatusConflict, "Esta meta ya está cerrada")
	case errors.Is(err, service.ErrInvalidTransition):
		writeMessage(w, http.StatusConflict, "Ese cambio de etapa no está permitido")
	case errors.Is(err, service.ErrStageIncomplete):
		writeMessage(w, http.StatusUnprocessableEntity, "Completa los pasos de esta etapa primero")
	case errors.Is(err, service.ErrSelfResultLanding):
		writeMessage(w, http.StatusUnprocessableEntity, "Las metas con página se miden con visitas y contactos")
	case errors.Is(err, service.ErrInvalidCadence):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Ritmo no válido", Field: "cadence"})
	default:
		slog.Error(msg, "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		writeMessage(w, http.StatusInternalServerError, "Algo salió mal")
	}
}

// userID returns the authenticated caller. Routes wrap handlers in
// RequireAuth, so a missing id means a wiring mistake.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := ctxkeys.UserID(r.Context())
	if !ok {
		writeError(w, r, service.ErrAnonymous, "")
	}
	return id, ok
}
