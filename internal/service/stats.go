package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vicu/vicu-api/internal/gamification"
	"github.com/vicu/vicu-api/internal/metrics"
	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/repository"
)

const defaultStatsFetchTimeout = 5 * time.Second

// zoneLookup resolves the time zone a user's calendar days are counted in.
type zoneLookup interface {
	Location(ctx context.Context, userID string) *time.Location
}

type StatsService struct {
	repo         repository.UserStatsRepository
	zones        zoneLookup
	metrics      *metrics.Metrics
	fetchTimeout time.Duration
	dailyGoal    int
	now          clock
}

// NewStatsService builds the stats service. zones may be nil, in which case
// days are counted in UTC.
func NewStatsService(repo repository.UserStatsRepository, zones zoneLookup, m *metrics.Metrics, fetchTimeout time.Duration, dailyGoal int) *StatsService {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultStatsFetchTimeout
	}
	if dailyGoal <= 0 {
		dailyGoal = model.DefaultDailyGoal
	}
	return &StatsService{
		repo:         repo,
		zones:        zones,
		metrics:      m,
		fetchTimeout: fetchTimeout,
		dailyGoal:    dailyGoal,
		now:          systemClock,
	}
}

// Get returns the caller's stats, normalized for today. Anonymous callers,
// slow reads and failed reads all get an empty snapshot.
func (s *StatsService) Get(ctx context.Context, id model.Identity) *model.UserStats {
	userID, ok := id.UserID()
	if !ok {
		return s.empty("")
	}

	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	stats, err := s.load(ctx, userID)
	if err != nil {
		slog.Warn("stats fetch failed, returning empty stats", "error", err, "user_id", userID)
		return s.empty(userID)
	}
	return gamification.Normalize(stats, s.now().In(s.location(ctx, userID)))
}

// location is the zone check-ins were recorded in, so the stored check-in
// date and today are compared on the same calendar.
func (s *StatsService) location(ctx context.Context, userID string) *time.Location {
	if s.zones == nil {
		return time.UTC
	}
	return s.zones.Location(ctx, userID)
}

func (s *StatsService) empty(userID string) *model.UserStats {
	stats := model.NewUserStats(userID)
	stats.DailyGoal = s.dailyGoal
	return stats
}

func (s *StatsService) load(ctx context.Context, userID string) (*model.UserStats, error) {
	stats, err := s.repo.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrStatsNotFound) {
		return s.empty(userID), nil
	}
	return stats, err
}

// RecordCheckin applies one completed step. now should be in the user's
// time zone so day boundaries and time-of-day badges match their clock.
func (s *StatsService) RecordCheckin(ctx context.Context, userID string, now time.Time) (gamification.Result, error) {
	stats, err := s.load(ctx, userID)
	if err != nil {
		return gamification.Result{}, fmt.Errorf("failed to load stats: %w", err)
	}

	res := gamification.RecordCheckin(stats, now)
	if err := s.persist(ctx, userID, res, now); err != nil {
		return gamification.Result{}, err
	}
	s.metrics.Checkin(res.XPGained)
	return res, nil
}

// RecordProjectCompleted applies a goal reaching the achieved stage.
func (s *StatsService) RecordProjectCompleted(ctx context.Context, userID string, now time.Time) (gamification.Result, error) {
	stats, err := s.load(ctx, userID)
	if err != nil {
		return gamification.Result{}, fmt.Errorf("failed to load stats: %w", err)
	}

	res := gamification.RecordProjectCompleted(stats, now)
	if err := s.persist(ctx, userID, res, now); err != nil {
		return gamification.Result{}, err
	}
	s.metrics.XP(res.XPGained)
	return res, nil
}

func (s *StatsService) XPEvents(ctx context.Context, userID string, limit int) ([]model.XPEvent, error) {
	return s.repo.XPEvents(ctx, userID, limit)
}

func (s *StatsService) persist(ctx context.Context, userID string, res gamification.Result, now time.Time) error {
	if err := s.repo.Upsert(ctx, res.Stats); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}

	events := make([]model.XPEvent, 0, len(res.Awards))
	for _, a := range res.Awards {
		events = append(events, model.XPEvent{
			ID:        uuid.New().String(),
			UserID:    userID,
			Amount:    a.Amount,
			Reason:    a.Reason,
			CreatedAt: now.UTC(),
		})
	}
	// The audit trail is best effort.
	if err := s.repo.AppendXPEvents(ctx, events); err != nil {
		slog.Error("failed to append xp events", "error", err, "user_id", userID)
	}
	return nil
}
