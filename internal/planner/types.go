package planner

import (
	"fmt"

	"github.com/vicu/vicu-api/internal/model"
)

const (
	MaxSteps          = 3
	MaxChannels       = 3
	MaxChannelActions = 2
)

type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Effort      string `json:"effort"`
}

type StepRequest struct {
	GoalTitle       string
	GoalDescription string
	Stage           model.Stage
	// Situation is optional free text about the user's current circumstances.
	Situation   string
	SurfaceType string
}

type PlanAction struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PlanChannel struct {
	Channel string       `json:"channel"`
	Actions []PlanAction `json:"actions"`
}

type AttackPlan struct {
	Channels []PlanChannel `json:"channels"`
}

// ActionCount is the number of actions across all channels.
func (p AttackPlan) ActionCount() int {
	n := 0
	for _, c := range p.Channels {
		n += len(c.Actions)
	}
	return n
}

// Brief describes a goal for attack plan generation.
type Brief struct {
	Title          string
	Description    string
	SurfaceType    string
	ExperimentType string
	Context        string
}

const (
	SourceGenerated = "generated"
	SourceFallback  = "fallback"
)

// GenerationFailure explains why generator output was not usable.
type GenerationFailure struct {
	Reason string
	Err    error
}

func (f *GenerationFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", f.Reason, f.Err)
	}
	return "generation failed: " + f.Reason
}

func (f *GenerationFailure) Unwrap() error {
	return f.Err
}
