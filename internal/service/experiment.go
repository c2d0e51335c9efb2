package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vicu/vicu-api/internal/cadence"
	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/planner"
	"github.com/vicu/vicu-api/internal/repository"
	"github.com/vicu/vicu-api/internal/stage"
	"github.com/vicu/vicu-api/internal/validation"
)

type ExperimentService struct {
	repo        repository.ExperimentRepository
	actionRepo  repository.ActionRepository
	checkinRepo repository.CheckinRepository
	recRepo     repository.RecommendationRepository
	planner     *planner.Planner
	now         clock
}

func NewExperimentService(
	repo repository.ExperimentRepository,
	actionRepo repository.ActionRepository,
	checkinRepo repository.CheckinRepository,
	recRepo repository.RecommendationRepository,
	planner *planner.Planner,
) *ExperimentService {
	return &ExperimentService{
		repo:        repo,
		actionRepo:  actionRepo,
		checkinRepo: checkinRepo,
		recRepo:     recRepo,
		planner:     planner,
		now:         systemClock,
	}
}

type CreateExperimentInput struct {
	Title          string
	Description    string
	SurfaceType    string
	ExperimentType string
	Context        string
	// Effort is small, medium or large. Empty derives it from ExperimentType.
	Effort   string
	Deadline *time.Time
}

// ExperimentDetail is a goal with everything the goal screen shows.
type ExperimentDetail struct {
	Experiment     *model.Experiment     `json:"experiment"`
	Actions        []*model.Action       `json:"actions"`
	Steps          []*model.Checkin      `json:"steps"`
	Progress       stage.Progress        `json:"progress"`
	Offer          *stage.Offer          `json:"transition_offer,omitempty"`
	Recommendation *model.Recommendation `json:"recommendation,omitempty"`
}

func (in *CreateExperimentInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.SurfaceType == "" {
		in.SurfaceType = model.SurfaceMessages
	}
	if in.ExperimentType == "" {
		in.ExperimentType = model.ExperimentTypeValidacion
	}
	if in.Context == "" {
		in.Context = model.ContextPersonal
	}
}

func (in *CreateExperimentInput) validate(today time.Time) error {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return err
	}
	if err := validation.ValidateSurfaceType(in.SurfaceType); err != nil {
		return err
	}
	if err := validation.ValidateExperimentType(in.ExperimentType); err != nil {
		return err
	}
	if err := validation.ValidateContext(in.Context); err != nil {
		return err
	}
	return validation.ValidateDeadline(in.Deadline, today)
}

// Create stores a new goal in the queued stage with its rhythm, attack plan
// and first steps.
func (s *ExperimentService) Create(ctx context.Context, userID string, in CreateExperimentInput) (*ExperimentDetail, error) {
	now := s.now()
	today := cadence.Day(now)

	in.normalize()
	if err := in.validate(today); err != nil {
		return nil, err
	}

	rhythm := cadence.DefaultRhythm(in.SurfaceType, cadence.Context{Kind: in.Context, Effort: in.Effort}, in.ExperimentType)

	e := &model.Experiment{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Title:               in.Title,
		Description:         in.Description,
		SurfaceType:         in.SurfaceType,
		ExperimentType:      in.ExperimentType,
		Context:             in.Context,
		Status:              model.StageQueued,
		SelfResult:          model.SelfResultNone,
		ActionCadence:       rhythm.ActionCadence,
		MetricsCadence:      rhythm.MetricsCadence,
		DecisionCadenceDays: rhythm.DecisionCadenceDays,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if in.Deadline != nil {
		d := cadence.Day(*in.Deadline)
		e.Deadline = &d
		e.DeadlineSource = model.DeadlineSourceUser
	} else {
		d := cadence.SuggestedDeadline(today, in.ExperimentType, in.SurfaceType)
		e.Deadline = &d
		e.DeadlineSource = model.DeadlineSourceAISuggested
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	plan, _ := s.planner.GenerateAttackPlan(ctx, planner.Brief{
		Title:          e.Title,
		Description:    e.Description,
		SurfaceType:    e.SurfaceType,
		ExperimentType: e.ExperimentType,
		Context:        e.Context,
	})
	actions := buildActions(e, plan, today, now)

	steps, _ := s.planner.GenerateSteps(ctx, planner.StepRequest{
		GoalTitle:       e.Title,
		GoalDescription: e.Description,
		Stage:           e.Status,
		SurfaceType:     e.SurfaceType,
	})
	checkins := buildCheckins(e.ID, e.Status, steps, 0, now)

	err := s.actionRepo.CreateBatch(ctx, actions)
	if err == nil {
		err = s.checkinRepo.CreateBatch(ctx, checkins)
	}
	if err != nil {
		delErr := s.repo.Delete(ctx, userID, e.ID)
		if delErr != nil {
			slog.Error("failed to delete goal during rollback", "error", delErr, "experiment_id", e.ID)
		}
		return nil, fmt.Errorf("failed to create goal plan: %w", err)
	}

	progress := stage.StageProgress(checkins, e.Status)
	return &ExperimentDetail{
		Experiment: e,
		Actions:    actions,
		Steps:      checkins,
		Progress:   progress,
	}, nil
}

func buildActions(e *model.Experiment, plan planner.AttackPlan, today, now time.Time) []*model.Action {
	dueDates := cadence.SuggestedDueDates(today, plan.ActionCount(), e.Deadline, e.ExperimentType, e.SurfaceType)

	actions := make([]*model.Action, 0, plan.ActionCount())
	for _, ch := range plan.Channels {
		for _, a := range ch.Actions {
			order := len(actions) + 1
			action := &model.Action{
				ID:             uuid.New().String(),
				ExperimentID:   e.ID,
				Channel:        ch.Channel,
				ActionType:     a.Type,
				Title:          a.Title,
				Content:        a.Content,
				Status:         model.ActionStatusPending,
				SuggestedOrder: order,
				CreatedAt:      now,
			}
			if order <= len(dueDates) {
				due := dueDates[order-1]
				action.SuggestedDueDate = &due
			}
			actions = append(actions, action)
		}
	}
	return actions
}

func buildCheckins(experimentID string, st model.Stage, steps []planner.Step, afterOrder int, now time.Time) []*model.Checkin {
	checkins := make([]*model.Checkin, 0, len(steps))
	for i, step := range steps {
		c := &model.Checkin{
			ID:              uuid.New().String(),
			ExperimentID:    experimentID,
			Status:          model.CheckinStatusPending,
			StepTitle:       step.Title,
			StepDescription: step.Description,
			Effort:          step.Effort,
			StepOrder:       afterOrder + i + 1,
			CreatedAt:       now,
		}
		c.SetScope(model.ForStage(st))
		checkins = append(checkins, c)
	}
	return checkins
}

func (s *ExperimentService) ByID(ctx context.Context, userID, id string) (*model.Experiment, error) {
	return s.repo.ByID(ctx, userID, id)
}

func (s *ExperimentService) List(ctx context.Context, userID string) ([]*model.Experiment, error) {
	return s.repo.List(ctx, userID)
}

// Detail loads a goal with its plan, current-stage steps, progress and the
// move to offer when the stage is complete.
func (s *ExperimentService) Detail(ctx context.Context, userID, id string) (*ExperimentDetail, error) {
	e, err := s.repo.ByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	actions, err := s.actionRepo.ByExperiment(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	checkins, err := s.checkinRepo.ByExperiment(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	detail := &ExperimentDetail{
		Experiment: e,
		Actions:    actions,
		Steps:      stage.StepsForStage(checkins, e.Status),
		Progress:   stage.StageProgress(checkins, e.Status),
	}

	var action string
	stored, err := s.recRepo.Current(ctx, e.ID)
	switch {
	case err == nil:
		rec := stored.Recommendation()
		if !rec.IsStale(e.Status) {
			detail.Recommendation = rec
			action = rec.Action
		}
	case !errors.Is(err, repository.ErrRecommendationNotFound):
		return nil, err
	}

	if offer, ok := stage.OfferTransition(detail.Progress, action); ok {
		detail.Offer = &offer
	}
	return detail, nil
}

// UpdateExperimentInput carries the fields to change. Nil fields are kept.
type UpdateExperimentInput struct {
	Title               *string
	Description         *string
	Deadline            *time.Time
	ClearDeadline       bool
	ActionCadence       *string
	MetricsCadence      *string
	DecisionCadenceDays *int
}

func (s *ExperimentService) Update(ctx context.Context, userID, id string, in UpdateExperimentInput) (*model.Experiment, error) {
	e, err := s.repo.ByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validation.ValidateTitle(title); err != nil {
			return nil, err
		}
		e.Title = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if err := validation.ValidateDescription(description); err != nil {
			return nil, err
		}
		e.Description = description
	}
	if in.ClearDeadline {
		d := cadence.SuggestedDeadline(cadence.Day(s.now()), e.ExperimentType, e.SurfaceType)
		e.Deadline = &d
		e.DeadlineSource = model.DeadlineSourceAISuggested
	} else if in.Deadline != nil {
		if err := validation.ValidateDeadline(in.Deadline, s.now()); err != nil {
			return nil, err
		}
		d := cadence.Day(*in.Deadline)
		e.Deadline = &d
		e.DeadlineSource = model.DeadlineSourceUser
	}
	if in.ActionCadence != nil {
		if !cadence.ValidCadence(*in.ActionCadence) {
			return nil, ErrInvalidCadence
		}
		e.ActionCadence = *in.ActionCadence
	}
	if in.MetricsCadence != nil {
		if !cadence.ValidCadence(*in.MetricsCadence) {
			return nil, ErrInvalidCadence
		}
		e.MetricsCadence = *in.MetricsCadence
	}
	if in.DecisionCadenceDays != nil {
		if *in.DecisionCadenceDays < 1 || *in.DecisionCadenceDays > 365 {
			return nil, ErrInvalidCadence
		}
		e.DecisionCadenceDays = *in.DecisionCadenceDays
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExperimentService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// SetSelfResult stores the user's own rating of a non-landing goal.
func (s *ExperimentService) SetSelfResult(ctx context.Context, userID, id, result string) (*model.Experiment, error) {
	if err := validation.ValidateSelfResult(result); err != nil {
		return nil, err
	}

	e, err := s.repo.ByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if e.IsLanding() {
		return nil, ErrSelfResultLanding
	}

	e.SelfResult = result
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// CompleteAction marks one attack plan action done.
func (s *ExperimentService) CompleteAction(ctx context.Context, userID, id, actionID string) (*model.Action, error) {
	e, err := s.repo.ByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if stage.IsTerminal(e.Status) {
		return nil, ErrExperimentClosed
	}

	if err := s.actionRepo.Complete(ctx, e.ID, actionID, s.now()); err != nil {
		return nil, err
	}
	return s.actionRepo.ByID(ctx, e.ID, actionID)
}
