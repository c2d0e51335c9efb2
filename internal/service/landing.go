package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/repository"
	"github.com/vicu/vicu-api/internal/stage"
	"github.com/vicu/vicu-api/internal/validation"
)

type LandingService struct {
	experimentRepo     repository.ExperimentRepository
	landingRepo        repository.LandingRepository
	defaultCountryCode string
	now                clock
}

func NewLandingService(experimentRepo repository.ExperimentRepository, landingRepo repository.LandingRepository, defaultCountryCode string) *LandingService {
	return &LandingService{
		experimentRepo:     experimentRepo,
		landingRepo:        landingRepo,
		defaultCountryCode: defaultCountryCode,
		now:                systemClock,
	}
}

type LandingCounts struct {
	Visits int `json:"visits"`
	Leads  int `json:"leads"`
}

func (s *LandingService) landing(ctx context.Context, experimentID string) (*model.Experiment, error) {
	e, err := s.experimentRepo.Get(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if !e.IsLanding() {
		return nil, ErrNotLanding
	}
	if stage.IsTerminal(e.Status) {
		return nil, ErrExperimentClosed
	}
	return e, nil
}

// RecordVisit counts one public page view.
func (s *LandingService) RecordVisit(ctx context.Context, experimentID, source string) error {
	e, err := s.landing(ctx, experimentID)
	if err != nil {
		return err
	}
	return s.landingRepo.RecordVisit(ctx, e.ID, cleanSource(source), s.now())
}

// RecordLead stores a contact left on a public page.
func (s *LandingService) RecordLead(ctx context.Context, experimentID, contact, source string) (*model.LandingLead, error) {
	normalized, err := validation.ValidateContact(contact, s.defaultCountryCode)
	if err != nil {
		return nil, err
	}

	e, err := s.landing(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	lead := &model.LandingLead{
		ID:           uuid.New().String(),
		ExperimentID: e.ID,
		Contact:      normalized,
		Source:       cleanSource(source),
		CreatedAt:    s.now(),
	}
	if err := s.landingRepo.RecordLead(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// Counts is owner scoped.
func (s *LandingService) Counts(ctx context.Context, userID, experimentID string) (*LandingCounts, error) {
	e, err := s.experimentRepo.ByID(ctx, userID, experimentID)
	if err != nil {
		return nil, err
	}
	visits, err := s.landingRepo.VisitCount(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	leads, err := s.landingRepo.LeadCount(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return &LandingCounts{Visits: visits, Leads: leads}, nil
}

const maxSourceRunes = 64

func cleanSource(source string) string {
	source = strings.ToLower(strings.TrimSpace(source))
	if runes := []rune(source); len(runes) > maxSourceRunes {
		source = string(runes[:maxSourceRunes])
	}
	return source
}
