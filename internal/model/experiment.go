package model

import (
	"time"
)

const (
	SurfaceLanding  = "landing"
	SurfaceMessages = "messages"
	SurfaceRitual   = "ritual"
)

const (
	ExperimentTypeClientes   = "clientes"
	ExperimentTypeValidacion = "validacion"
	ExperimentTypeEquipo     = "equipo"
)

const (
	ContextPersonal = "personal"
	ContextTeam     = "team"
	ContextBusiness = "business"
)

const (
	DeadlineSourceUser        = "user"
	DeadlineSourceAISuggested = "ai_suggested"
)

const (
	SelfResultAlto  = "alto"
	SelfResultMedio = "medio"
	SelfResultBajo  = "bajo"
	SelfResultNone  = "none"
)

type Experiment struct {
	ID                  string     `db:"id" json:"id"`
	UserID              string     `db:"user_id" json:"user_id"`
	Title               string     `db:"title" json:"title"`
	Description         string     `db:"description" json:"description"`
	SurfaceType         string     `db:"surface_type" json:"surface_type"`
	ExperimentType      string     `db:"experiment_type" json:"experiment_type"`
	Context             string     `db:"context" json:"context"`
	Status              Stage      `db:"status" json:"status"`
	Deadline            *time.Time `db:"deadline" json:"deadline,omitempty"`
	DeadlineSource      string     `db:"deadline_source" json:"deadline_source,omitempty"`
	SelfResult          string     `db:"self_result" json:"self_result"`
	ActionCadence       string     `db:"action_cadence" json:"action_cadence"`
	MetricsCadence      string     `db:"metrics_cadence" json:"metrics_cadence"`
	DecisionCadenceDays int        `db:"decision_cadence_days" json:"decision_cadence_days"`
	LastCheckinAt       *time.Time `db:"last_checkin_at" json:"last_checkin_at,omitempty"`
	CheckinsCount       int        `db:"checkins_count" json:"checkins_count"`
	StreakDays          int        `db:"streak_days" json:"streak_days"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

func (e *Experiment) IsLanding() bool {
	return e.SurfaceType == SurfaceLanding
}

// HasSelfResult reports whether the user rated a non-landing goal.
func (e *Experiment) HasSelfResult() bool {
	switch e.SelfResult {
	case SelfResultAlto, SelfResultMedio, SelfResultBajo:
		return true
	}
	return false
}

func ValidSurfaceType(s string) bool {
	return s == SurfaceLanding || s == SurfaceMessages || s == SurfaceRitual
}

func ValidExperimentType(s string) bool {
	return s == ExperimentTypeClientes || s == ExperimentTypeValidacion || s == ExperimentTypeEquipo
}

func ValidContext(s string) bool {
	return s == ContextPersonal || s == ContextTeam || s == ContextBusiness
}
