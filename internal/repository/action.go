package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/model"
)

type ActionRepository interface {
	CreateBatch(ctx context.Context, actions []*model.Action) error
	ByExperiment(ctx context.Context, experimentID string) ([]*model.Action, error)
	ByID(ctx context.Context, experimentID, id string) (*model.Action, error)
	Complete(ctx context.Context, experimentID, id string, at time.Time) error
	// Counts returns the total and done action counts of a goal.
	Counts(ctx context.Context, experimentID string) (total, done int, err error)
}

type actionRepository struct {
	db *sqlx.DB
}

func NewActionRepository(db *sqlx.DB) ActionRepository {
	return &actionRepository{db: db}
}

const actionColumns = `id, experiment_id, channel, action_type, title, content, status, suggested_order,
	suggested_due_date, completed_at, created_at`

func (r *actionRepository) CreateBatch(ctx context.Context, actions []*model.Action) error {
	if len(actions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO experiment_actions (` + actionColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for _, a := range actions {
		_, err := tx.ExecContext(ctx, query,
			a.ID,
			a.ExperimentID,
			a.Channel,
			a.ActionType,
			a.Title,
			a.Content,
			a.Status,
			a.SuggestedOrder,
			a.SuggestedDueDate,
			a.CompletedAt,
			a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create action %d: %w", a.SuggestedOrder, err)
		}
	}

	return tx.Commit()
}

func (r *actionRepository) ByExperiment(ctx context.Context, experimentID string) ([]*model.Action, error) {
	actions := []*model.Action{}
	query := `SELECT ` + actionColumns + ` FROM experiment_actions WHERE experiment_id = $1 ORDER BY suggested_order`

	err := r.db.SelectContext(ctx, &actions, query, experimentID)
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *actionRepository) ByID(ctx context.Context, experimentID, id string) (*model.Action, error) {
	a := &model.Action{}
	query := `SELECT ` + actionColumns + ` FROM experiment_actions WHERE id = $1 AND experiment_id = $2`

	err := r.db.GetContext(ctx, a, query, id, experimentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActionNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *actionRepository) Complete(ctx context.Context, experimentID, id string, at time.Time) error {
	query := `UPDATE experiment_actions SET status = $1, completed_at = $2 WHERE id = $3 AND experiment_id = $4`

	result, err := r.db.ExecContext(ctx, query, model.ActionStatusDone, at, id, experimentID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActionNotFound
	}
	return nil
}

func (r *actionRepository) Counts(ctx context.Context, experimentID string) (int, int, error) {
	var counts struct {
		Total int `db:"total"`
		Done  int `db:"done"`
	}
	query := `SELECT COUNT(*) AS total,
	                 COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0) AS done
	          FROM experiment_actions WHERE experiment_id = $2`

	err := r.db.GetContext(ctx, &counts, query, model.ActionStatusDone, experimentID)
	if err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Done, nil
}
