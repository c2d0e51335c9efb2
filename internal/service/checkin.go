package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vicu/vicu-api/internal/gamification"
	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/planner"
	"github.com/vicu/vicu-api/internal/repository"
	"github.com/vicu/vicu-api/internal/stage"
)

type CheckinService struct {
	experimentRepo repository.ExperimentRepository
	checkinRepo    repository.CheckinRepository
	profiles       *ProfileService
	stats          *StatsService
	planner        *planner.Planner
	now            clock
}

func NewCheckinService(
	experimentRepo repository.ExperimentRepository,
	checkinRepo repository.CheckinRepository,
	profiles *ProfileService,
	stats *StatsService,
	planner *planner.Planner,
) *CheckinService {
	return &CheckinService{
		experimentRepo: experimentRepo,
		checkinRepo:    checkinRepo,
		profiles:       profiles,
		stats:          stats,
		planner:        planner,
		now:            systemClock,
	}
}

// GamificationSummary is what the client shows after a check-in.
type GamificationSummary struct {
	XPGained     int              `json:"xp_gained"`
	NewBadges    []string         `json:"new_badges"`
	LeveledUp    bool             `json:"leveled_up"`
	DailyGoalMet bool             `json:"daily_goal_met"`
	Stats        *model.UserStats `json:"stats"`
}

func summarize(res gamification.Result) *GamificationSummary {
	badges := res.NewBadges
	if badges == nil {
		badges = []string{}
	}
	return &GamificationSummary{
		XPGained:     res.XPGained,
		NewBadges:    badges,
		LeveledUp:    res.LeveledUp,
		DailyGoalMet: res.DailyGoalMet,
		Stats:        res.Stats,
	}
}

type CheckinResult struct {
	Checkin *model.Checkin `json:"checkin"`
	// AlreadyDone is set when the step had been completed before; nothing
	// is awarded twice.
	AlreadyDone  bool                 `json:"already_done"`
	Progress     stage.Progress       `json:"progress"`
	Offer        *stage.Offer         `json:"transition_offer,omitempty"`
	Gamification *GamificationSummary `json:"gamification,omitempty"`
}

// CompleteStep marks a step done, moves the goal counters and records
// gamification. The app and WhatsApp replies both go through here.
func (s *CheckinService) CompleteStep(ctx context.Context, userID, experimentID, checkinID, notes string) (*CheckinResult, error) {
	e, err := s.experimentRepo.ByID(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	if stage.IsTerminal(e.Status) {
		return nil, ErrExperimentClosed
	}

	now := s.now()
	localNow := now.In(s.profiles.Location(ctx, userID))

	changed, err := s.checkinRepo.Complete(ctx, e.ID, checkinID, strings.TrimSpace(notes), now)
	if err != nil {
		return nil, err
	}

	result := &CheckinResult{AlreadyDone: !changed}

	if changed {
		e.StreakDays = gamification.NextStreak(e.LastCheckinAt, e.StreakDays, localNow)
		e.LastCheckinAt = &now
		e.CheckinsCount++
		if err := s.experimentRepo.Update(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to update goal counters: %w", err)
		}

		res, err := s.stats.RecordCheckin(ctx, userID, localNow)
		if err != nil {
			// The step stays done; stats catch up on the next check-in.
			slog.Error("failed to record gamification", "error", err, "user_id", userID)
		} else {
			result.Gamification = summarize(res)
		}
	}

	checkins, err := s.checkinRepo.ByExperiment(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range checkins {
		if c.ID == checkinID {
			result.Checkin = c
		}
	}

	result.Progress = stage.StageProgress(checkins, e.Status)
	if offer, ok := stage.OfferTransition(result.Progress, ""); ok {
		result.Offer = &offer
	}
	return result, nil
}

// GenerateSteps adds new steps for the goal's current stage. situation is
// optional context from the user.
func (s *CheckinService) GenerateSteps(ctx context.Context, userID, experimentID, situation string) ([]*model.Checkin, string, error) {
	e, err := s.experimentRepo.ByID(ctx, userID, experimentID)
	if err != nil {
		return nil, "", err
	}
	return s.generateForStage(ctx, e, situation)
}

func (s *CheckinService) generateForStage(ctx context.Context, e *model.Experiment, situation string) ([]*model.Checkin, string, error) {
	if stage.IsTerminal(e.Status) {
		return nil, "", ErrExperimentClosed
	}

	existing, err := s.checkinRepo.ByExperiment(ctx, e.ID)
	if err != nil {
		return nil, "", err
	}
	maxOrder := 0
	for _, c := range existing {
		if c.StepOrder > maxOrder {
			maxOrder = c.StepOrder
		}
	}

	steps, source := s.planner.GenerateSteps(ctx, planner.StepRequest{
		GoalTitle:       e.Title,
		GoalDescription: e.Description,
		Stage:           e.Status,
		Situation:       situation,
		SurfaceType:     e.SurfaceType,
	})

	checkins := buildCheckins(e.ID, e.Status, steps, maxOrder, s.now())
	if err := s.checkinRepo.CreateBatch(ctx, checkins); err != nil {
		return nil, "", fmt.Errorf("failed to save steps: %w", err)
	}
	return checkins, source, nil
}
