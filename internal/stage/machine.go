// Package stage holds the goal life-cycle graph and the rules for offering a
// move to the next stage.
package stage

import "github.com/vicu/vicu-api/internal/model"

// ValidTransitions lists the stages reachable from each stage. Terminal
// stages have no entry.
var ValidTransitions = map[model.Stage][]model.Stage{
	model.StageQueued:    {model.StageBuilding, model.StagePaused, model.StageDiscarded},
	model.StageBuilding:  {model.StageTesting, model.StagePaused, model.StageDiscarded},
	model.StageTesting:   {model.StageAdjusting, model.StageAchieved, model.StagePaused, model.StageDiscarded},
	model.StageAdjusting: {model.StageAchieved, model.StageTesting, model.StagePaused, model.StageDiscarded},
	model.StagePaused:    {model.StageBuilding, model.StageTesting, model.StageAdjusting, model.StageDiscarded},
}

// DefaultNext is the linear progression used when no usable action is given.
var DefaultNext = map[model.Stage]model.Stage{
	model.StageQueued:    model.StageBuilding,
	model.StageBuilding:  model.StageTesting,
	model.StageTesting:   model.StageAdjusting,
	model.StageAdjusting: model.StageAchieved,
	model.StagePaused:    model.StageBuilding,
}

func IsTerminal(s model.Stage) bool {
	return s == model.StageAchieved || s == model.StageDiscarded
}

// IsActive reports whether the goal is being worked on.
func IsActive(s model.Stage) bool {
	return s == model.StageBuilding || s == model.StageTesting || s == model.StageAdjusting
}

func CanTransition(from, to model.Stage) bool {
	for _, s := range ValidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ActionTarget maps a recommendation action to the stage it points at.
func ActionTarget(action string) (model.Stage, bool) {
	switch action {
	case model.RecommendationKeepBuilding:
		return model.StageBuilding, true
	case model.RecommendationKeepTesting:
		return model.StageTesting, true
	case model.RecommendationAdjust:
		return model.StageAdjusting, true
	case model.RecommendationAchieved:
		return model.StageAchieved, true
	case model.RecommendationPause:
		return model.StagePaused, true
	}
	return "", false
}

// Resolve picks the stage to offer from current given a recommendation
// action. An action that does not map to a legal move falls back to
// DefaultNext. Terminal stages resolve to nothing.
func Resolve(current model.Stage, action string) (model.Stage, bool) {
	if IsTerminal(current) {
		return "", false
	}
	if target, ok := ActionTarget(action); ok && CanTransition(current, target) {
		return target, true
	}
	next, ok := DefaultNext[current]
	return next, ok
}
