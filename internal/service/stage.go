package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vicu/vicu-api/internal/metrics"
	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/repository"
	"github.com/vicu/vicu-api/internal/stage"
)

type StageService struct {
	experimentRepo  repository.ExperimentRepository
	checkinRepo     repository.CheckinRepository
	checkins        *CheckinService
	recommendations *RecommendationService
	stats           *StatsService
	profiles        *ProfileService
	email           *EmailService
	metrics         *metrics.Metrics
	now             clock
}

func NewStageService(
	experimentRepo repository.ExperimentRepository,
	checkinRepo repository.CheckinRepository,
	checkins *CheckinService,
	recommendations *RecommendationService,
	stats *StatsService,
	profiles *ProfileService,
	email *EmailService,
	m *metrics.Metrics,
) *StageService {
	return &StageService{
		experimentRepo:  experimentRepo,
		checkinRepo:     checkinRepo,
		checkins:        checkins,
		recommendations: recommendations,
		stats:           stats,
		profiles:        profiles,
		email:           email,
		metrics:         m,
		now:             systemClock,
	}
}

type TransitionResult struct {
	Experiment     *model.Experiment     `json:"experiment"`
	From           model.Stage           `json:"from"`
	Steps          []*model.Checkin      `json:"steps"`
	StepsSource    string                `json:"steps_source,omitempty"`
	Recommendation *model.Recommendation `json:"recommendation,omitempty"`
	Gamification   *GamificationSummary  `json:"gamification,omitempty"`
}

// requiresCompletion reports whether moving from -> to needs every step of
// the current stage done. Starting, resuming, pausing and discarding do not.
func requiresCompletion(from, to model.Stage) bool {
	if to == model.StagePaused || to == model.StageDiscarded {
		return false
	}
	return stage.IsActive(from)
}

// AcceptTransition moves a goal to another stage. An empty target takes the
// move the current recommendation points at.
func (s *StageService) AcceptTransition(ctx context.Context, userID, experimentID string, to model.Stage) (*TransitionResult, error) {
	e, err := s.experimentRepo.ByID(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	from := e.Status
	if stage.IsTerminal(from) {
		return nil, ErrExperimentClosed
	}

	if to == "" {
		var action string
		if rec, err := s.recommendations.Current(ctx, userID, e.ID); err == nil {
			action = rec.Action
		} else {
			slog.Warn("transition without recommendation", "error", err, "experiment_id", e.ID)
		}
		target, ok := stage.Resolve(from, action)
		if !ok {
			return nil, ErrInvalidTransition
		}
		to = target
	}

	if !stage.CanTransition(from, to) {
		return nil, ErrInvalidTransition
	}

	if requiresCompletion(from, to) {
		checkins, err := s.checkinRepo.ByExperiment(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if !stage.StageProgress(checkins, from).Complete() {
			return nil, ErrStageIncomplete
		}
	}

	e.Status = to
	if err := s.experimentRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to move goal: %w", err)
	}
	s.metrics.Transition(string(from), string(to))
	slog.Info("goal stage changed", "experiment_id", e.ID, "from", from, "to", to)

	result := &TransitionResult{Experiment: e, From: from, Steps: []*model.Checkin{}}

	// Generation and the new recommendation are best effort: the move is
	// already stored and both can be retried from the goal screen.
	if !stage.IsTerminal(to) && to != model.StagePaused {
		steps, source, err := s.checkins.generateForStage(ctx, e, "")
		if err != nil {
			slog.Error("failed to generate steps after transition", "error", err, "experiment_id", e.ID)
		} else {
			result.Steps = steps
			result.StepsSource = source
		}
	}

	rec, err := s.recommendations.refresh(ctx, e)
	if err != nil {
		slog.Error("failed to refresh recommendation after transition", "error", err, "experiment_id", e.ID)
	} else {
		result.Recommendation = rec
	}

	if to == model.StageAchieved {
		result.Gamification = s.completeProject(ctx, userID, e)
	}
	return result, nil
}

func (s *StageService) completeProject(ctx context.Context, userID string, e *model.Experiment) *GamificationSummary {
	profile, err := s.profiles.ByUserID(ctx, userID)
	if err != nil {
		slog.Error("failed to load profile for achieved goal", "error", err, "user_id", userID)
		profile = &model.Profile{UserID: userID}
	}

	res, err := s.stats.RecordProjectCompleted(ctx, userID, s.now().In(profile.Location()))
	if err != nil {
		slog.Error("failed to record completed project", "error", err, "user_id", userID)
		return nil
	}

	if profile.Email != "" && s.email != nil {
		if err := s.email.SendAchievementEmail(ctx, profile.Email, profile.Name, e.Title); err != nil {
			slog.Warn("failed to send achievement email", "error", err, "user_id", userID)
		}
	}
	return summarize(res)
}
