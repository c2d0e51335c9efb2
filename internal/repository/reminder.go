package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/model"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *model.Reminder) error
	ExistsForDay(ctx context.Context, experimentID, localDate string) (bool, error)
	ByProviderMessageID(ctx context.Context, providerMessageID string) (*model.Reminder, error)
	// LatestOpen is the most recent reminder of a user still waiting for a reply.
	LatestOpen(ctx context.Context, userID string) (*model.Reminder, error)
	SetStatus(ctx context.Context, id, status string, repliedAt *time.Time) error
}

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

const reminderColumns = `id, user_id, experiment_id, checkin_id, channel, provider_message_id, status,
	local_date, sent_at, replied_at`

func (r *reminderRepository) Create(ctx context.Context, m *model.Reminder) error {
	query := `INSERT INTO reminders (` + reminderColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.UserID,
		m.ExperimentID,
		m.CheckinID,
		m.Channel,
		m.ProviderMessageID,
		m.Status,
		m.LocalDate,
		m.SentAt,
		m.RepliedAt,
	)
	return err
}

func (r *reminderRepository) ExistsForDay(ctx context.Context, experimentID, localDate string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM reminders WHERE experiment_id = $1 AND local_date = $2`
	err := r.db.GetContext(ctx, &count, query, experimentID, localDate)
	return count > 0, err
}

func (r *reminderRepository) ByProviderMessageID(ctx context.Context, providerMessageID string) (*model.Reminder, error) {
	m := &model.Reminder{}
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE provider_message_id = $1`

	err := r.db.GetContext(ctx, m, query, providerMessageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *reminderRepository) LatestOpen(ctx context.Context, userID string) (*model.Reminder, error) {
	m := &model.Reminder{}
	query := `SELECT ` + reminderColumns + ` FROM reminders
	          WHERE user_id = $1 AND channel = $2 AND replied_at IS NULL AND status <> $3
	          ORDER BY sent_at DESC LIMIT 1`

	err := r.db.GetContext(ctx, m, query, userID, model.ReminderChannelWhatsApp, model.ReminderStatusFailed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *reminderRepository) SetStatus(ctx context.Context, id, status string, repliedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET status = $1, replied_at = $2 WHERE id = $3`, status, repliedAt, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReminderNotFound
	}
	return nil
}
