package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicu/vicu-api/internal/model"
)

var actions = []string{
	"",
	"unknown",
	model.RecommendationKeepBuilding,
	model.RecommendationKeepTesting,
	model.RecommendationAdjust,
	model.RecommendationAchieved,
	model.RecommendationPause,
	model.RecommendationNoData,
}

func TestResolveAlwaysLegal(t *testing.T) {
	for _, current := range model.Stages {
		for _, action := range actions {
			to, ok := Resolve(current, action)
			if IsTerminal(current) {
				assert.False(t, ok, "%s/%s", current, action)
				continue
			}
			require.True(t, ok, "%s/%s", current, action)
			if target, mapped := ActionTarget(action); mapped && CanTransition(current, target) {
				assert.Equal(t, target, to)
			} else {
				assert.Equal(t, DefaultNext[current], to)
			}
			assert.True(t, CanTransition(current, to), "%s -> %s", current, to)
		}
	}
}

func TestTerminalStagesHaveNoMoves(t *testing.T) {
	for _, s := range []model.Stage{model.StageAchieved, model.StageDiscarded} {
		assert.Empty(t, ValidTransitions[s])
		_, ok := DefaultNext[s]
		assert.False(t, ok)
		for _, to := range model.Stages {
			assert.False(t, CanTransition(s, to))
		}
	}
}

func TestResolveExamples(t *testing.T) {
	to, _ := Resolve(model.StageTesting, model.RecommendationAchieved)
	assert.Equal(t, model.StageAchieved, to)

	to, _ = Resolve(model.StageBuilding, model.RecommendationKeepBuilding)
	assert.Equal(t, model.StageTesting, to)

	to, _ = Resolve(model.StageBuilding, model.RecommendationPause)
	assert.Equal(t, model.StagePaused, to)

	to, _ = Resolve(model.StagePaused, "")
	assert.Equal(t, model.StageBuilding, to)

	to, _ = Resolve(model.StageAdjusting, model.RecommendationKeepTesting)
	assert.Equal(t, model.StageTesting, to)
}

func TestStageProgressScopes(t *testing.T) {
	tested := model.StageTesting
	building := model.StageBuilding
	checkins := []*model.Checkin{
		{Status: model.CheckinStatusDone, ForStage: &tested},
		{Status: model.CheckinStatusPending, ForStage: &tested},
		{Status: model.CheckinStatusDone, ForStage: &building},
		{Status: model.CheckinStatusDone},
	}

	p := StageProgress(checkins, model.StageTesting)
	assert.Equal(t, 3, p.TotalSteps)
	assert.Equal(t, 2, p.CompletedSteps)
	assert.Equal(t, 66, p.Percent)
	assert.False(t, p.Complete())
	assert.Len(t, StepsForStage(checkins, model.StageTesting), 3)
}

func TestOfferTransition(t *testing.T) {
	_, ok := OfferTransition(Progress{Stage: model.StageBuilding}, "")
	assert.False(t, ok, "no steps means no offer")

	_, ok = OfferTransition(Progress{Stage: model.StageBuilding, TotalSteps: 3, CompletedSteps: 2}, "")
	assert.False(t, ok)

	offer, ok := OfferTransition(Progress{Stage: model.StageTesting, TotalSteps: 3, CompletedSteps: 3}, model.RecommendationAchieved)
	require.True(t, ok)
	assert.Equal(t, Offer{From: model.StageTesting, To: model.StageAchieved}, offer)

	_, ok = OfferTransition(Progress{Stage: model.StageAchieved, TotalSteps: 1, CompletedSteps: 1}, "")
	assert.False(t, ok)
}
