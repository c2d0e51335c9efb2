package model

// Stage is a goal life-cycle stage.
type Stage string

const (
	StageQueued    Stage = "queued"
	StageBuilding  Stage = "building"
	StageTesting   Stage = "testing"
	StageAdjusting Stage = "adjusting"
	StageAchieved  Stage = "achieved"
	StagePaused    Stage = "paused"
	StageDiscarded Stage = "discarded"
)

var Stages = []Stage{
	StageQueued,
	StageBuilding,
	StageTesting,
	StageAdjusting,
	StageAchieved,
	StagePaused,
	StageDiscarded,
}

func (s Stage) Valid() bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

// StepScope ties a checkin to one stage. The zero value is the legacy scope,
// used by rows created before steps were stage-tagged; it matches every stage.
type StepScope struct {
	stage Stage
}

func ForStage(s Stage) StepScope {
	return StepScope{stage: s}
}

func LegacyScope() StepScope {
	return StepScope{}
}

func (s StepScope) IsLegacy() bool {
	return s.stage == ""
}

// Stage returns the tagged stage and false for the legacy scope.
func (s StepScope) Stage() (Stage, bool) {
	return s.stage, s.stage != ""
}

func (s StepScope) Matches(current Stage) bool {
	return s.IsLegacy() || s.stage == current
}
