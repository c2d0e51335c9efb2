package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/db"
	"github.com/vicu/vicu-api/internal/model"
)

type CheckinRepository interface {
	CreateBatch(ctx context.Context, checkins []*model.Checkin) error
	ByExperiment(ctx context.Context, experimentID string) ([]*model.Checkin, error)
	ByID(ctx context.Context, experimentID, id string) (*model.Checkin, error)
	// Complete marks a pending step done. It returns false when the step was
	// already done.
	Complete(ctx context.Context, experimentID, id, notes string, at time.Time) (bool, error)
}

type checkinRepository struct {
	db   *sqlx.DB
	caps db.Capabilities
}

func NewCheckinRepository(conn *sqlx.DB, caps db.Capabilities) CheckinRepository {
	return &checkinRepository{db: conn, caps: caps}
}

const checkinColumns = `id, experiment_id, for_stage, status, step_title, step_description, user_notes,
	step_order, completed_at, created_at`

func (r *checkinRepository) selectColumns() string {
	if r.caps.CheckinEffort {
		return checkinColumns + ", effort"
	}
	return checkinColumns + ", '' AS effort"
}

func (r *checkinRepository) CreateBatch(ctx context.Context, checkins []*model.Checkin) error {
	if len(checkins) == 0 {
		return nil
	}

	columns := checkinColumns
	n := 10
	if r.caps.CheckinEffort {
		columns += ", effort"
		n++
	}
	query := `INSERT INTO experiment_checkins (` + columns + `) VALUES (` + placeholders(n) + `)`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range checkins {
		args := []any{
			c.ID,
			c.ExperimentID,
			c.ForStage,
			c.Status,
			c.StepTitle,
			c.StepDescription,
			c.UserNotes,
			c.StepOrder,
			c.CompletedAt,
			c.CreatedAt,
		}
		if r.caps.CheckinEffort {
			args = append(args, c.Effort)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to create checkin %d: %w", c.StepOrder, err)
		}
	}

	return tx.Commit()
}

func (r *checkinRepository) ByExperiment(ctx context.Context, experimentID string) ([]*model.Checkin, error) {
	checkins := []*model.Checkin{}
	query := `SELECT ` + r.selectColumns() + ` FROM experiment_checkins
	          WHERE experiment_id = $1 ORDER BY step_order, created_at`

	err := r.db.SelectContext(ctx, &checkins, query, experimentID)
	if err != nil {
		return nil, err
	}
	return checkins, nil
}

func (r *checkinRepository) ByID(ctx context.Context, experimentID, id string) (*model.Checkin, error) {
	c := &model.Checkin{}
	query := `SELECT ` + r.selectColumns() + ` FROM experiment_checkins WHERE id = $1 AND experiment_id = $2`

	err := r.db.GetContext(ctx, c, query, id, experimentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCheckinNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *checkinRepository) Complete(ctx context.Context, experimentID, id, notes string, at time.Time) (bool, error) {
	query := `UPDATE experiment_checkins SET status = $1, user_notes = $2, completed_at = $3
	          WHERE id = $4 AND experiment_id = $5 AND status <> $6`

	result, err := r.db.ExecContext(ctx, query,
		model.CheckinStatusDone, notes, at, id, experimentID, model.CheckinStatusDone)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return true, nil
	}

	// Either missing or already done.
	if _, err := r.ByID(ctx, experimentID, id); err != nil {
		return false, err
	}
	return false, nil
}
