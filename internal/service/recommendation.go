package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/recommendation"
	"github.com/vicu/vicu-api/internal/repository"
)

type RecommendationService struct {
	experimentRepo repository.ExperimentRepository
	actionRepo     repository.ActionRepository
	landingRepo    repository.LandingRepository
	recRepo        repository.RecommendationRepository
	now            clock
}

func NewRecommendationService(
	experimentRepo repository.ExperimentRepository,
	actionRepo repository.ActionRepository,
	landingRepo repository.LandingRepository,
	recRepo repository.RecommendationRepository,
) *RecommendationService {
	return &RecommendationService{
		experimentRepo: experimentRepo,
		actionRepo:     actionRepo,
		landingRepo:    landingRepo,
		recRepo:        recRepo,
		now:            systemClock,
	}
}

// Current returns the stored recommendation for the goal's current stage,
// computing a fresh one when none exists or the goal moved on.
func (s *RecommendationService) Current(ctx context.Context, userID, experimentID string) (*model.Recommendation, error) {
	e, err := s.experimentRepo.ByID(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}

	stored, err := s.recRepo.Current(ctx, e.ID)
	switch {
	case err == nil:
		rec := stored.Recommendation()
		if !rec.IsStale(e.Status) {
			return rec, nil
		}
	case !errors.Is(err, repository.ErrRecommendationNotFound):
		return nil, err
	}

	return s.refresh(ctx, e)
}

// Refresh recomputes and stores the recommendation, archiving the previous one.
func (s *RecommendationService) Refresh(ctx context.Context, userID, experimentID string) (*model.Recommendation, error) {
	e, err := s.experimentRepo.ByID(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, e)
}

func (s *RecommendationService) History(ctx context.Context, userID, experimentID string) ([]*model.StoredRecommendation, error) {
	e, err := s.experimentRepo.ByID(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	return s.recRepo.History(ctx, e.ID)
}

func (s *RecommendationService) refresh(ctx context.Context, e *model.Experiment) (*model.Recommendation, error) {
	in, err := s.gather(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("failed to gather goal metrics: %w", err)
	}

	now := s.now()
	rec := recommendation.Calculate(in, now)
	rec.CreatedAt = now

	stored := &model.StoredRecommendation{
		ID:            uuid.New().String(),
		ExperimentID:  e.ID,
		ForStage:      rec.ForStage,
		Action:        rec.Action,
		Title:         rec.Title,
		Justification: rec.Justification,
		NextSteps:     model.StringList(rec.NextSteps),
		Color:         rec.Color,
		DecisionDue:   rec.DecisionDue,
		CreatedAt:     now,
	}
	if err := s.recRepo.Replace(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to save recommendation: %w", err)
	}
	return &rec, nil
}

// gather reads the goal's metrics. The counts are independent, so they are
// read concurrently.
func (s *RecommendationService) gather(ctx context.Context, e *model.Experiment) (recommendation.Input, error) {
	var (
		total, done   int
		visits, leads int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, done, err = s.actionRepo.Counts(gctx, e.ID)
		return err
	})
	if e.IsLanding() {
		g.Go(func() error {
			var err error
			visits, err = s.landingRepo.VisitCount(gctx, e.ID)
			return err
		})
		g.Go(func() error {
			var err error
			leads, err = s.landingRepo.LeadCount(gctx, e.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return recommendation.Input{}, err
	}

	return recommendation.Input{
		SurfaceType:         e.SurfaceType,
		Stage:               e.Status,
		CreatedAt:           e.CreatedAt,
		DecisionCadenceDays: e.DecisionCadenceDays,
		Landing: recommendation.LandingInput{
			Visits:       visits,
			Leads:        leads,
			TotalActions: total,
			DoneActions:  done,
		},
		NonLanding: recommendation.NonLandingInput{
			TotalActions: total,
			DoneActions:  done,
			SelfResult:   e.SelfResult,
		},
	}, nil
}
