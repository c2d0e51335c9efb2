package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/db"
	"github.com/vicu/vicu-api/internal/model"
)

type ExperimentRepository interface {
	Create(ctx context.Context, e *model.Experiment) error
	// ByID is owner scoped.
	ByID(ctx context.Context, userID, id string) (*model.Experiment, error)
	// Get loads a goal without an owner check, for public and webhook paths.
	Get(ctx context.Context, id string) (*model.Experiment, error)
	List(ctx context.Context, userID string) ([]*model.Experiment, error)
	ListByStatus(ctx context.Context, statuses ...model.Stage) ([]*model.Experiment, error)
	Update(ctx context.Context, e *model.Experiment) error
	Delete(ctx context.Context, userID, id string) error
}

type experimentRepository struct {
	db   *sqlx.DB
	caps db.Capabilities
}

func NewExperimentRepository(conn *sqlx.DB, caps db.Capabilities) ExperimentRepository {
	return &experimentRepository{db: conn, caps: caps}
}

const experimentColumns = `id, user_id, title, description, surface_type, experiment_type, context, status,
	deadline, self_result, action_cadence, metrics_cadence, decision_cadence_days, last_checkin_at,
	checkins_count, streak_days, created_at, updated_at`

func (r *experimentRepository) selectColumns() string {
	if r.caps.DeadlineSource {
		return experimentColumns + ", deadline_source"
	}
	return experimentColumns + ", '' AS deadline_source"
}

func (r *experimentRepository) Create(ctx context.Context, e *model.Experiment) error {
	columns := experimentColumns
	args := []any{
		e.ID,
		e.UserID,
		e.Title,
		e.Description,
		e.SurfaceType,
		e.ExperimentType,
		e.Context,
		e.Status,
		utcPtr(e.Deadline),
		e.SelfResult,
		e.ActionCadence,
		e.MetricsCadence,
		e.DecisionCadenceDays,
		utcPtr(e.LastCheckinAt),
		e.CheckinsCount,
		e.StreakDays,
		e.CreatedAt.UTC(),
		e.UpdatedAt.UTC(),
	}
	if r.caps.DeadlineSource {
		columns += ", deadline_source"
		args = append(args, e.DeadlineSource)
	}

	query := `INSERT INTO experiments (` + columns + `) VALUES (` + placeholders(len(args)) + `)`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *experimentRepository) ByID(ctx context.Context, userID, id string) (*model.Experiment, error) {
	e := &model.Experiment{}
	query := `SELECT ` + r.selectColumns() + ` FROM experiments WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, e, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExperimentNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *experimentRepository) Get(ctx context.Context, id string) (*model.Experiment, error) {
	e := &model.Experiment{}
	query := `SELECT ` + r.selectColumns() + ` FROM experiments WHERE id = $1`

	err := r.db.GetContext(ctx, e, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExperimentNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *experimentRepository) List(ctx context.Context, userID string) ([]*model.Experiment, error) {
	experiments := []*model.Experiment{}
	query := `SELECT ` + r.selectColumns() + ` FROM experiments WHERE user_id = $1 ORDER BY updated_at DESC`

	err := r.db.SelectContext(ctx, &experiments, query, userID)
	if err != nil {
		return nil, err
	}
	return experiments, nil
}

func (r *experimentRepository) ListByStatus(ctx context.Context, statuses ...model.Stage) ([]*model.Experiment, error) {
	experiments := []*model.Experiment{}
	if len(statuses) == 0 {
		return experiments, nil
	}

	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = s
	}
	query := `SELECT ` + r.selectColumns() + ` FROM experiments WHERE status IN (` + placeholders(len(args)) + `) ORDER BY created_at`

	err := r.db.SelectContext(ctx, &experiments, query, args...)
	if err != nil {
		return nil, err
	}
	return experiments, nil
}

func (r *experimentRepository) Update(ctx context.Context, e *model.Experiment) error {
	e.UpdatedAt = time.Now().UTC()

	sets := []string{
		"title = $1", "description = $2", "status = $3", "deadline = $4", "self_result = $5",
		"action_cadence = $6", "metrics_cadence = $7", "decision_cadence_days = $8",
		"last_checkin_at = $9", "checkins_count = $10", "streak_days = $11", "updated_at = $12",
	}
	args := []any{
		e.Title,
		e.Description,
		e.Status,
		utcPtr(e.Deadline),
		e.SelfResult,
		e.ActionCadence,
		e.MetricsCadence,
		e.DecisionCadenceDays,
		utcPtr(e.LastCheckinAt),
		e.CheckinsCount,
		e.StreakDays,
		e.UpdatedAt,
	}
	if r.caps.DeadlineSource {
		args = append(args, e.DeadlineSource)
		sets = append(sets, "deadline_source = "+placeholder(len(args)))
	}
	args = append(args, e.ID, e.UserID)
	query := `UPDATE experiments SET ` + strings.Join(sets, ", ") +
		` WHERE id = ` + placeholder(len(args)-1) + ` AND user_id = ` + placeholder(len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrExperimentNotFound
	}
	return nil
}

// childTables are removed with their goal. SQLite only enforces the
// ON DELETE CASCADE clauses when foreign keys are switched on, so rows are
// deleted explicitly.
var childTables = []string{
	"experiment_actions",
	"experiment_checkins",
	"experiment_recommendations",
	"landing_visits",
	"landing_leads",
	"reminders",
}

func (r *experimentRepository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM experiments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrExperimentNotFound
	}

	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE experiment_id = $1`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
