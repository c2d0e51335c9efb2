package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vicu/vicu-api/internal/cadence"
	"github.com/vicu/vicu-api/internal/metrics"
	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/repository"
	"github.com/vicu/vicu-api/internal/stage"
	"github.com/vicu/vicu-api/internal/whatsapp"
)

const processedMessagesCacheSize = 4096

type ReminderService struct {
	experimentRepo repository.ExperimentRepository
	checkinRepo    repository.CheckinRepository
	profileRepo    repository.ProfileRepository
	reminderRepo   repository.ReminderRepository
	checkins       *CheckinService
	sender         whatsapp.Sender
	email          *EmailService
	metrics        *metrics.Metrics
	appURL         string
	processed      *lru.Cache[string, struct{}]
	now            clock
}

func NewReminderService(
	experimentRepo repository.ExperimentRepository,
	checkinRepo repository.CheckinRepository,
	profileRepo repository.ProfileRepository,
	reminderRepo repository.ReminderRepository,
	checkins *CheckinService,
	sender whatsapp.Sender,
	email *EmailService,
	m *metrics.Metrics,
	appURL string,
) (*ReminderService, error) {
	processed, err := lru.New[string, struct{}](processedMessagesCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create message cache: %w", err)
	}
	return &ReminderService{
		experimentRepo: experimentRepo,
		checkinRepo:    checkinRepo,
		profileRepo:    profileRepo,
		reminderRepo:   reminderRepo,
		checkins:       checkins,
		sender:         sender,
		email:          email,
		metrics:        m,
		appURL:         appURL,
		processed:      processed,
		now:            systemClock,
	}, nil
}

type DispatchReport struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// DispatchDue sends at most one reminder per active goal per local day, on
// the days its action cadence expects work. WhatsApp is preferred; users
// without it get an email.
func (s *ReminderService) DispatchDue(ctx context.Context) (DispatchReport, error) {
	var report DispatchReport

	experiments, err := s.experimentRepo.ListByStatus(ctx, model.StageBuilding, model.StageTesting, model.StageAdjusting)
	if err != nil {
		return report, fmt.Errorf("failed to list active goals: %w", err)
	}

	now := s.now()
	for _, e := range experiments {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		sent, err := s.dispatchOne(ctx, e, now)
		switch {
		case err != nil:
			report.Failed++
			slog.Error("reminder failed", "error", err, "experiment_id", e.ID)
		case sent:
			report.Sent++
		default:
			report.Skipped++
		}
	}

	slog.Info("reminders dispatched", "sent", report.Sent, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

func (s *ReminderService) dispatchOne(ctx context.Context, e *model.Experiment, now time.Time) (bool, error) {
	profile, err := s.profileRepo.ByUserID(ctx, e.UserID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	local := now.In(profile.Location())
	if !cadence.DueOn(e.ActionCadence, local.Weekday()) {
		return false, nil
	}

	localDate := local.Format(time.DateOnly)
	exists, err := s.reminderRepo.ExistsForDay(ctx, e.ID, localDate)
	if err != nil || exists {
		return false, err
	}

	checkins, err := s.checkinRepo.ByExperiment(ctx, e.ID)
	if err != nil {
		return false, err
	}
	var next *model.Checkin
	for _, c := range stage.StepsForStage(checkins, e.Status) {
		if !c.IsDone() {
			next = c
			break
		}
	}
	if next == nil {
		return false, nil
	}

	reminder := &model.Reminder{
		ID:           uuid.New().String(),
		UserID:       e.UserID,
		ExperimentID: e.ID,
		CheckinID:    &next.ID,
		Status:       model.ReminderStatusSent,
		LocalDate:    localDate,
		SentAt:       now,
	}

	switch {
	case profile.CanReceiveWhatsApp():
		reminder.Channel = model.ReminderChannelWhatsApp
		id, err := s.sender.SendText(ctx, profile.Phone, reminderMessage(profile.Name, e.Title, next.StepTitle))
		if err != nil {
			reminder.Status = model.ReminderStatusFailed
			s.metrics.Message(model.ReminderChannelWhatsApp, "outbound", "failed")
		} else {
			reminder.ProviderMessageID = id
			s.metrics.Message(model.ReminderChannelWhatsApp, "outbound", "sent")
		}
		if createErr := s.reminderRepo.Create(ctx, reminder); createErr != nil {
			return false, createErr
		}
		return err == nil, err

	case profile.Email != "" && s.email != nil:
		reminder.Channel = model.ReminderChannelEmail
		err := s.email.SendReminderEmail(ctx, profile.Email, profile.Name, e.Title, next.StepTitle, s.goalURL(e.ID))
		if err != nil {
			reminder.Status = model.ReminderStatusFailed
			s.metrics.Message(model.ReminderChannelEmail, "outbound", "failed")
		} else {
			s.metrics.Message(model.ReminderChannelEmail, "outbound", "sent")
		}
		if createErr := s.reminderRepo.Create(ctx, reminder); createErr != nil {
			return false, createErr
		}
		return err == nil, err
	}

	return false, nil
}

func (s *ReminderService) goalURL(experimentID string) string {
	return fmt.Sprintf("%s/experiments/%s", s.appURL, experimentID)
}

// HandleInbound applies one WhatsApp reply and answers it. Messages already
// seen are ignored, as are replies that cannot be tied to a reminder.
func (s *ReminderService) HandleInbound(ctx context.Context, msg whatsapp.InboundMessage) error {
	if seen, _ := s.processed.ContainsOrAdd(msg.ID, struct{}{}); seen {
		slog.Debug("duplicate whatsapp message ignored", "message_id", msg.ID)
		return nil
	}
	s.metrics.Message(model.ReminderChannelWhatsApp, "inbound", "received")

	reminder, err := s.findReminder(ctx, msg)
	if errors.Is(err, repository.ErrReminderNotFound) || errors.Is(err, repository.ErrProfileNotFound) {
		slog.Info("whatsapp reply without open reminder", "phone", msg.From)
		return nil
	}
	if err != nil {
		s.processed.Remove(msg.ID)
		return err
	}

	action := whatsapp.ClassifyReply(msg.Text)
	reply, err := s.apply(ctx, reminder, action)
	if err != nil {
		s.processed.Remove(msg.ID)
		return err
	}

	if _, err := s.sender.SendText(ctx, msg.From, reply); err != nil {
		s.metrics.Message(model.ReminderChannelWhatsApp, "outbound", "failed")
		slog.Warn("failed to answer whatsapp reply", "error", err, "phone", msg.From)
		return nil
	}
	s.metrics.Message(model.ReminderChannelWhatsApp, "outbound", "sent")
	return nil
}

func (s *ReminderService) findReminder(ctx context.Context, msg whatsapp.InboundMessage) (*model.Reminder, error) {
	if msg.ReplyTo != "" {
		reminder, err := s.reminderRepo.ByProviderMessageID(ctx, msg.ReplyTo)
		if !errors.Is(err, repository.ErrReminderNotFound) {
			return reminder, err
		}
	}

	profile, err := s.profileRepo.ByPhone(ctx, msg.From)
	if err != nil {
		return nil, err
	}
	return s.reminderRepo.LatestOpen(ctx, profile.UserID)
}

func (s *ReminderService) apply(ctx context.Context, reminder *model.Reminder, action whatsapp.ReplyAction) (string, error) {
	now := s.now()
	var reply string

	switch action {
	case whatsapp.ReplyDone:
		reply = "¡Bien hecho! Marqué tu paso como completado. 🎉"
		if reminder.CheckinID != nil {
			res, err := s.checkins.CompleteStep(ctx, reminder.UserID, reminder.ExperimentID, *reminder.CheckinID, "")
			switch {
			case errors.Is(err, repository.ErrExperimentNotFound), errors.Is(err, repository.ErrCheckinNotFound), errors.Is(err, ErrExperimentClosed):
				reply = "Ese paso ya no está activo. Abre Vicu para ver tus pasos de hoy."
			case err != nil:
				return "", err
			case res.Gamification != nil:
				reply = doneReply(res)
			}
		}
		return reply, s.reminderRepo.SetStatus(ctx, reminder.ID, model.ReminderStatusDone, &now)

	case whatsapp.ReplyStuck:
		reply = fmt.Sprintf("Está bien atorarse. Divide el paso en algo más pequeño o pide nuevos pasos aquí: %s", s.goalURL(reminder.ExperimentID))
		return reply, s.reminderRepo.SetStatus(ctx, reminder.ID, model.ReminderStatusStuck, &now)

	default:
		reply = "Va, lo dejamos para más tarde. Cuando lo termines respóndeme 1."
		return reply, s.reminderRepo.SetStatus(ctx, reminder.ID, model.ReminderStatusLater, nil)
	}
}

func reminderMessage(name, goalTitle, stepTitle string) string {
	return fmt.Sprintf("%s 👋 Hoy toca avanzar en \"%s\".\nTu siguiente paso: %s\n\nResponde:\n1 si ya lo hiciste\n2 si lo dejas para más tarde\n3 si te atoraste",
		greeting(name), goalTitle, stepTitle)
}

func doneReply(res *CheckinResult) string {
	g := res.Gamification
	msg := fmt.Sprintf("¡Bien hecho! +%d XP. Llevas %d días de racha.", g.XPGained, g.Stats.StreakDays)
	if g.LeveledUp {
		msg += fmt.Sprintf(" ¡Subiste a nivel %d!", g.Stats.Level)
	}
	if res.Progress.Complete() {
		msg += " Completaste todos los pasos de esta etapa; abre Vicu para decidir cómo seguir."
	}
	return msg
}
