package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"

	"github.com/vicu/vicu-api/internal/service"
)

const EventRemindersDue = "reminders.due"

// SchedulerHandler receives signed sweeps from the external cron service.
type SchedulerHandler struct {
	reminderService *service.ReminderService
	secret          string
}

func NewSchedulerHandler(reminderService *service.ReminderService, secret string) *SchedulerHandler {
	return &SchedulerHandler{
		reminderService: reminderService,
		secret:          secret,
	}
}

func (h *SchedulerHandler) verify(payload []byte, headers http.Header) error {
	if h.secret == "" {
		slog.Warn("scheduler no webhook secret configured, skipping signature verification")
		return nil
	}

	wh, err := standardwebhooks.NewWebhookRaw([]byte(h.secret))
	if err != nil {
		return fmt.Errorf("failed to create webhook verifier: %w", err)
	}

	httpHeaders := http.Header{}
	httpHeaders.Set("webhook-id", headers.Get("webhook-id"))
	httpHeaders.Set("webhook-timestamp", headers.Get("webhook-timestamp"))
	httpHeaders.Set("webhook-signature", headers.Get("webhook-signature"))

	if err := wh.Verify(payload, httpHeaders); err != nil {
		return fmt.Errorf("invalid webhook signature: %w", err)
	}
	return nil
}

func (h *SchedulerHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Error("failed to read webhook payload", "error", err)
		http.Error(w, "Failed to read payload", http.StatusBadRequest)
		return
	}

	if err := h.verify(payload, r.Header); err != nil {
		slog.Warn("scheduler webhook rejected", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var event struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		http.Error(w, "Failed to parse webhook", http.StatusBadRequest)
		return
	}

	slog.Info("scheduler webhook received", "event_type", event.Type)

	switch event.Type {
	case EventRemindersDue:
		report, err := h.reminderService.DispatchDue(r.Context())
		if err != nil {
			slog.Error("reminder sweep failed", "error", err)
			http.Error(w, "Failed to process webhook", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, report)
	default:
		slog.Info("scheduler event ignored", "event_type", event.Type)
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}
