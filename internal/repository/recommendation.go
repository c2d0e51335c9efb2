package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/model"
)

type RecommendationRepository interface {
	// Current is the latest non-archived recommendation of a goal.
	Current(ctx context.Context, experimentID string) (*model.StoredRecommendation, error)
	// Replace archives the current recommendation and stores rec in one transaction.
	Replace(ctx context.Context, rec *model.StoredRecommendation) error
	History(ctx context.Context, experimentID string) ([]*model.StoredRecommendation, error)
}

type recommendationRepository struct {
	db *sqlx.DB
}

func NewRecommendationRepository(db *sqlx.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

const recommendationColumns = `id, experiment_id, for_stage, action, title, justification, next_steps,
	color, decision_due, created_at, archived_at`

func (r *recommendationRepository) Current(ctx context.Context, experimentID string) (*model.StoredRecommendation, error) {
	rec := &model.StoredRecommendation{}
	query := `SELECT ` + recommendationColumns + ` FROM experiment_recommendations
	          WHERE experiment_id = $1 AND archived_at IS NULL
	          ORDER BY created_at DESC LIMIT 1`

	err := r.db.GetContext(ctx, rec, query, experimentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecommendationNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *recommendationRepository) Replace(ctx context.Context, rec *model.StoredRecommendation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	archivedAt := rec.CreatedAt
	if archivedAt.IsZero() {
		archivedAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE experiment_recommendations SET archived_at = $1 WHERE experiment_id = $2 AND archived_at IS NULL`,
		archivedAt, rec.ExperimentID)
	if err != nil {
		return err
	}

	query := `INSERT INTO experiment_recommendations (` + recommendationColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = tx.ExecContext(ctx, query,
		rec.ID,
		rec.ExperimentID,
		rec.ForStage,
		rec.Action,
		rec.Title,
		rec.Justification,
		rec.NextSteps,
		rec.Color,
		rec.DecisionDue,
		rec.CreatedAt,
		rec.ArchivedAt,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *recommendationRepository) History(ctx context.Context, experimentID string) ([]*model.StoredRecommendation, error) {
	recs := []*model.StoredRecommendation{}
	query := `SELECT ` + recommendationColumns + ` FROM experiment_recommendations
	          WHERE experiment_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &recs, query, experimentID)
	if err != nil {
		return nil, err
	}
	return recs, nil
}
