package model

import "time"

const (
	CheckinStatusPending = "pending"
	CheckinStatusDone    = "done"
)

const (
	EffortMuyPequeno = "muy_pequeno"
	EffortPequeno    = "pequeno"
	EffortMedio      = "medio"
)

// Checkin is a step the user checks off. ForStage is nullable in storage;
// use Scope to read it.
type Checkin struct {
	ID              string     `db:"id" json:"id"`
	ExperimentID    string     `db:"experiment_id" json:"experiment_id"`
	ForStage        *Stage     `db:"for_stage" json:"for_stage,omitempty"`
	Status          string     `db:"status" json:"status"`
	StepTitle       string     `db:"step_title" json:"step_title"`
	StepDescription string     `db:"step_description" json:"step_description"`
	Effort          string     `db:"effort" json:"effort,omitempty"`
	UserNotes       string     `db:"user_notes" json:"user_notes,omitempty"`
	StepOrder       int        `db:"step_order" json:"step_order"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

func (c *Checkin) Scope() StepScope {
	if c.ForStage == nil || *c.ForStage == "" {
		return LegacyScope()
	}
	return ForStage(*c.ForStage)
}

func (c *Checkin) SetScope(scope StepScope) {
	if st, ok := scope.Stage(); ok {
		c.ForStage = &st
		return
	}
	c.ForStage = nil
}

func (c *Checkin) IsDone() bool {
	return c.Status == CheckinStatusDone
}

func ValidEffort(s string) bool {
	return s == EffortMuyPequeno || s == EffortPequeno || s == EffortMedio
}
