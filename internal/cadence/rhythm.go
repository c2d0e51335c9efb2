// Package cadence computes default goal rhythms and spreads action due dates
// over a goal's time window.
package cadence

import (
	"time"

	"github.com/vicu/vicu-api/internal/model"
)

const (
	Daily           = "daily"
	TwoThreePerWeek = "2-3_per_week"
	Weekly          = "weekly"
	None            = "none"
)

const (
	EffortSmall  = "small"
	EffortMedium = "medium"
	EffortLarge  = "large"
)

const (
	RitualDecisionDays  = 28
	DefaultDecisionDays = 14
)

type Rhythm struct {
	ActionCadence       string `json:"action_cadence"`
	MetricsCadence      string `json:"metrics_cadence"`
	DecisionCadenceDays int    `json:"decision_cadence_days"`
}

// Context describes who the goal is for. Effort may be empty, in which case
// it is derived from the experiment type.
type Context struct {
	Kind   string
	Effort string
}

func (c Context) personal() bool {
	return c.Kind == "" || c.Kind == model.ContextPersonal
}

// DefaultRhythm returns the suggested cadence for a new goal.
func DefaultRhythm(surfaceType string, ctx Context, experimentType string) Rhythm {
	switch surfaceType {
	case model.SurfaceRitual:
		if ctx.personal() {
			return Rhythm{
				ActionCadence:       effortCadence(effortFor(ctx.Effort, experimentType)),
				MetricsCadence:      None,
				DecisionCadenceDays: RitualDecisionDays,
			}
		}
		return Rhythm{
			ActionCadence:       TwoThreePerWeek,
			MetricsCadence:      Weekly,
			DecisionCadenceDays: RitualDecisionDays,
		}
	case model.SurfaceLanding:
		return Rhythm{
			ActionCadence:       TwoThreePerWeek,
			MetricsCadence:      TwoThreePerWeek,
			DecisionCadenceDays: DefaultDecisionDays,
		}
	default:
		return Rhythm{
			ActionCadence:       Weekly,
			MetricsCadence:      Weekly,
			DecisionCadenceDays: DefaultDecisionDays,
		}
	}
}

// DecisionDays is the decision window used when a goal has no stored rhythm.
func DecisionDays(surfaceType string) int {
	if surfaceType == model.SurfaceRitual {
		return RitualDecisionDays
	}
	return DefaultDecisionDays
}

func effortFor(effort, experimentType string) string {
	switch effort {
	case EffortSmall, EffortMedium, EffortLarge:
		return effort
	}
	switch experimentType {
	case model.ExperimentTypeValidacion:
		return EffortSmall
	case model.ExperimentTypeEquipo:
		return EffortLarge
	default:
		return EffortMedium
	}
}

func effortCadence(effort string) string {
	switch effort {
	case EffortSmall:
		return Daily
	case EffortLarge:
		return Weekly
	default:
		return TwoThreePerWeek
	}
}

// ValidCadence reports whether s is a known action or metrics cadence.
func ValidCadence(s string) bool {
	switch s {
	case Daily, TwoThreePerWeek, Weekly, None:
		return true
	}
	return false
}

// DueOn reports whether a goal with the given action cadence expects work on
// weekday. Twice-or-thrice weekly work falls on Monday, Wednesday and Friday;
// weekly work on Monday.
func DueOn(actionCadence string, weekday time.Weekday) bool {
	switch actionCadence {
	case Daily:
		return true
	case TwoThreePerWeek:
		return weekday == time.Monday || weekday == time.Wednesday || weekday == time.Friday
	case Weekly:
		return weekday == time.Monday
	default:
		return false
	}
}
