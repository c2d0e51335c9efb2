package model

import "time"

const (
	ReminderStatusSent   = "sent"
	ReminderStatusDone   = "done"
	ReminderStatusLater  = "later"
	ReminderStatusStuck  = "stuck"
	ReminderStatusFailed = "failed"
)

const (
	ReminderChannelWhatsApp = "whatsapp"
	ReminderChannelEmail    = "email"
)

type Reminder struct {
	ID                string     `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"user_id"`
	ExperimentID      string     `db:"experiment_id" json:"experiment_id"`
	CheckinID         *string    `db:"checkin_id" json:"checkin_id,omitempty"`
	Channel           string     `db:"channel" json:"channel"`
	ProviderMessageID string     `db:"provider_message_id" json:"provider_message_id,omitempty"`
	Status            string     `db:"status" json:"status"`
	// LocalDate is the recipient's calendar day (YYYY-MM-DD) the reminder belongs to.
	LocalDate         string     `db:"local_date" json:"local_date"`
	SentAt            time.Time  `db:"sent_at" json:"sent_at"`
	RepliedAt         *time.Time `db:"replied_at" json:"replied_at,omitempty"`
}

type LandingLead struct {
	ID           string    `db:"id" json:"id"`
	ExperimentID string    `db:"experiment_id" json:"experiment_id"`
	Contact      string    `db:"contact" json:"contact"`
	Source       string    `db:"source" json:"source"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
