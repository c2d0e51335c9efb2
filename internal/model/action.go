package model

import "time"

const (
	ActionStatusPending    = "pending"
	ActionStatusInProgress = "in_progress"
	ActionStatusDone       = "done"
	ActionStatusBlocked    = "blocked"
)

// Action is one pre-written item of a goal's attack plan.
type Action struct {
	ID               string     `db:"id" json:"id"`
	ExperimentID     string     `db:"experiment_id" json:"experiment_id"`
	Channel          string     `db:"channel" json:"channel"`
	ActionType       string     `db:"action_type" json:"action_type"`
	Title            string     `db:"title" json:"title"`
	Content          string     `db:"content" json:"content"`
	Status           string     `db:"status" json:"status"`
	SuggestedOrder   int        `db:"suggested_order" json:"suggested_order"`
	SuggestedDueDate *time.Time `db:"suggested_due_date" json:"suggested_due_date,omitempty"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

func (a *Action) IsDone() bool {
	return a.Status == ActionStatusDone
}
