package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/model"
)

type ProfileRepository interface {
	ByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// ByPhone returns the most recently updated profile with that number.
	ByPhone(ctx context.Context, phone string) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, user_id, name, email, phone, whatsapp_opt_in, timezone, created_at, updated_at`

func (r *profileRepository) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) ByPhone(ctx context.Context, phone string) (*model.Profile, error) {
	var profile model.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE phone = $1 ORDER BY updated_at DESC LIMIT 1`
	err := r.db.GetContext(ctx, &profile, query, phone)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *model.Profile) error {
	query := `INSERT INTO profiles (` + profileColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (user_id) DO UPDATE SET
	              name = excluded.name,
	              email = excluded.email,
	              phone = excluded.phone,
	              whatsapp_opt_in = excluded.whatsapp_opt_in,
	              timezone = excluded.timezone,
	              updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Email,
		p.Phone,
		p.WhatsAppOptIn,
		p.Timezone,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}
