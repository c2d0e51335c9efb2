package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/vicu/vicu-api/internal/service"
	"github.com/vicu/vicu-api/internal/whatsapp"
)

type WhatsAppHandler struct {
	reminderService *service.ReminderService
	appSecret       string
	verifyToken     string
}

func NewWhatsAppHandler(reminderService *service.ReminderService, appSecret, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{
		reminderService: reminderService,
		appSecret:       appSecret,
		verifyToken:     verifyToken,
	}
}

// Verify answers the subscription handshake Meta sends when the webhook
// URL is registered.
func (h *WhatsAppHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if h.verifyToken == "" || q.Get("hub.mode") != "subscribe" || q.Get("hub.verify_token") != h.verifyToken {
		slog.Warn("whatsapp webhook verification rejected", "mode", q.Get("hub.mode"))
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(q.Get("hub.challenge")))
}

// Receive handles inbound messages. A failure answers 500 so the platform
// redelivers; messages already applied are skipped on redelivery.
func (h *WhatsAppHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Error("failed to read webhook payload", "error", err)
		http.Error(w, "Failed to read payload", http.StatusBadRequest)
		return
	}
	defer func() {
		closeErr := r.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close request body", "error", closeErr)
		}
	}()

	verification, err := whatsapp.VerifySignature(h.appSecret, payload, r.Header.Get(whatsapp.SignatureHeader))
	if err != nil {
		slog.Warn("whatsapp webhook signature rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}
	if verification == whatsapp.VerificationSkipped {
		slog.Warn("whatsapp no app secret configured, skipping signature verification")
	}

	messages, err := whatsapp.ParseInbound(payload)
	if err != nil {
		slog.Error("failed to parse whatsapp webhook", "error", err)
		http.Error(w, "Failed to parse payload", http.StatusBadRequest)
		return
	}

	for _, msg := range messages {
		if err := h.reminderService.HandleInbound(r.Context(), msg); err != nil {
			slog.Error("failed to handle whatsapp message", "error", err, "message_id", msg.ID)
			http.Error(w, "Failed to process webhook", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
