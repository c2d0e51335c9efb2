package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/model"
)

type LandingRepository interface {
	RecordVisit(ctx context.Context, experimentID, source string, at time.Time) error
	RecordLead(ctx context.Context, lead *model.LandingLead) error
	VisitCount(ctx context.Context, experimentID string) (int, error)
	LeadCount(ctx context.Context, experimentID string) (int, error)
	Leads(ctx context.Context, experimentID string) ([]*model.LandingLead, error)
}

type landingRepository struct {
	db *sqlx.DB
}

func NewLandingRepository(db *sqlx.DB) LandingRepository {
	return &landingRepository{db: db}
}

func (r *landingRepository) RecordVisit(ctx context.Context, experimentID, source string, at time.Time) error {
	query := `INSERT INTO landing_visits (id, experiment_id, source, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), experimentID, source, at)
	return err
}

func (r *landingRepository) RecordLead(ctx context.Context, lead *model.LandingLead) error {
	query := `INSERT INTO landing_leads (id, experiment_id, contact, source, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, lead.ID, lead.ExperimentID, lead.Contact, lead.Source, lead.CreatedAt)
	return err
}

func (r *landingRepository) VisitCount(ctx context.Context, experimentID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM landing_visits WHERE experiment_id = $1`, experimentID)
	return count, err
}

func (r *landingRepository) LeadCount(ctx context.Context, experimentID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM landing_leads WHERE experiment_id = $1`, experimentID)
	return count, err
}

func (r *landingRepository) Leads(ctx context.Context, experimentID string) ([]*model.LandingLead, error) {
	leads := []*model.LandingLead{}
	query := `SELECT id, experiment_id, contact, source, created_at FROM landing_leads
	          WHERE experiment_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &leads, query, experimentID)
	if err != nil {
		return nil, err
	}
	return leads, nil
}
