package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/model"
)

type UserStatsRepository interface {
	ByUserID(ctx context.Context, userID string) (*model.UserStats, error)
	// Upsert writes the whole snapshot. Last write wins.
	Upsert(ctx context.Context, stats *model.UserStats) error
	AppendXPEvents(ctx context.Context, events []model.XPEvent) error
	XPEvents(ctx context.Context, userID string, limit int) ([]model.XPEvent, error)
}

type userStatsRepository struct {
	db *sqlx.DB
}

func NewUserStatsRepository(db *sqlx.DB) UserStatsRepository {
	return &userStatsRepository{db: db}
}

const userStatsColumns = `user_id, xp, level, streak_days, longest_streak, daily_checkins, daily_goal,
	total_checkins, total_projects_completed, badges, last_checkin_date, updated_at`

func (r *userStatsRepository) ByUserID(ctx context.Context, userID string) (*model.UserStats, error) {
	stats := &model.UserStats{}
	query := `SELECT ` + userStatsColumns + ` FROM user_stats WHERE user_id = $1`

	err := r.db.GetContext(ctx, stats, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *userStatsRepository) Upsert(ctx context.Context, s *model.UserStats) error {
	query := `INSERT INTO user_stats (` + userStatsColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          ON CONFLICT (user_id) DO UPDATE SET
	              xp = excluded.xp,
	              level = excluded.level,
	              streak_days = excluded.streak_days,
	              longest_streak = excluded.longest_streak,
	              daily_checkins = excluded.daily_checkins,
	              daily_goal = excluded.daily_goal,
	              total_checkins = excluded.total_checkins,
	              total_projects_completed = excluded.total_projects_completed,
	              badges = excluded.badges,
	              last_checkin_date = excluded.last_checkin_date,
	              updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		s.UserID,
		s.XP,
		s.Level,
		s.StreakDays,
		s.LongestStreak,
		s.DailyCheckins,
		s.DailyGoal,
		s.TotalCheckins,
		s.TotalProjectsCompleted,
		s.Badges,
		utcPtr(s.LastCheckinDate),
		s.UpdatedAt.UTC(),
	)
	return err
}

func (r *userStatsRepository) AppendXPEvents(ctx context.Context, events []model.XPEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO xp_events (id, user_id, amount, reason, created_at) VALUES ($1, $2, $3, $4, $5)`
	for _, e := range events {
		if _, err := tx.ExecContext(ctx, query, e.ID, e.UserID, e.Amount, e.Reason, e.CreatedAt); err != nil {
			return fmt.Errorf("failed to append xp event %s: %w", e.Reason, err)
		}
	}
	return tx.Commit()
}

func (r *userStatsRepository) XPEvents(ctx context.Context, userID string, limit int) ([]model.XPEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	events := []model.XPEvent{}
	query := `SELECT id, user_id, amount, reason, created_at FROM xp_events
	          WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	err := r.db.SelectContext(ctx, &events, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return events, nil
}
