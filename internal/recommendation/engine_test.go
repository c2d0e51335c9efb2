package recommendation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicu/vicu-api/internal/model"
)

func TestLandingZeroInputs(t *testing.T) {
	rec := Landing(LandingInput{})
	assert.Equal(t, model.RecommendationKeepBuilding, rec.Action)
	assertClean(t, rec)
}

func TestLandingBranches(t *testing.T) {
	tests := []struct {
		name string
		in   LandingInput
		want string
	}{
		{"low progress", LandingInput{Visits: 100, Leads: 30, TotalActions: 10, DoneActions: 4}, model.RecommendationKeepBuilding},
		{"low traffic", LandingInput{Visits: 9, Leads: 5, TotalActions: 10, DoneActions: 6}, model.RecommendationKeepBuilding},
		{"plan done little traffic", LandingInput{Visits: 4, Leads: 0, TotalActions: 6, DoneActions: 6}, model.RecommendationKeepTesting},
		{"plan done one visit short", LandingInput{Visits: 9, Leads: 9, TotalActions: 6, DoneActions: 6}, model.RecommendationKeepTesting},
		{"achieved", LandingInput{Visits: 40, Leads: 6, TotalActions: 6, DoneActions: 3}, model.RecommendationAchieved},
		{"high conversion too few leads", LandingInput{Visits: 10, Leads: 4, TotalActions: 6, DoneActions: 6}, model.RecommendationAdjust},
		{"adjust", LandingInput{Visits: 100, Leads: 5, TotalActions: 6, DoneActions: 6}, model.RecommendationAdjust},
		{"pause", LandingInput{Visits: 100, Leads: 4, TotalActions: 6, DoneActions: 6}, model.RecommendationPause},
		{"no visits leads", LandingInput{Visits: 0, Leads: 3, TotalActions: 2, DoneActions: 1}, model.RecommendationKeepBuilding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Landing(tt.in)
			assert.Equal(t, tt.want, rec.Action)
			assertClean(t, rec)
		})
	}
}

func TestLandingGapCountsMissingActions(t *testing.T) {
	rec := Landing(LandingInput{Visits: 50, TotalActions: 6, DoneActions: 1})
	require.NotEmpty(t, rec.NextSteps)
	assert.Contains(t, rec.NextSteps[0], "2 acciones")
}

func TestNonLandingBranches(t *testing.T) {
	tests := []struct {
		name string
		in   NonLandingInput
		want string
	}{
		{"nothing", NonLandingInput{}, model.RecommendationKeepBuilding},
		{"early", NonLandingInput{TotalActions: 4, DoneActions: 1}, model.RecommendationKeepBuilding},
		{"late", NonLandingInput{TotalActions: 4, DoneActions: 3}, model.RecommendationKeepBuilding},
		{"no rating", NonLandingInput{TotalActions: 4, DoneActions: 4}, model.RecommendationNoData},
		{"rating none", NonLandingInput{TotalActions: 4, DoneActions: 4, SelfResult: model.SelfResultNone}, model.RecommendationNoData},
		{"alto", NonLandingInput{TotalActions: 4, DoneActions: 4, SelfResult: model.SelfResultAlto}, model.RecommendationAchieved},
		{"medio", NonLandingInput{TotalActions: 4, DoneActions: 4, SelfResult: model.SelfResultMedio}, model.RecommendationAdjust},
		{"bajo", NonLandingInput{TotalActions: 4, DoneActions: 4, SelfResult: model.SelfResultBajo}, model.RecommendationPause},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NonLanding(tt.in)
			assert.Equal(t, tt.want, rec.Action)
			assertClean(t, rec)
		})
	}
}

func TestNonLandingEarlyAndLateCopyDiffer(t *testing.T) {
	early := NonLanding(NonLandingInput{TotalActions: 4, DoneActions: 1})
	late := NonLanding(NonLandingInput{TotalActions: 4, DoneActions: 2})
	assert.NotEqual(t, early.Title, late.Title)
}

func TestCalculateDecisionNudge(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -20)

	ritual := Calculate(Input{
		SurfaceType: model.SurfaceRitual,
		Stage:       model.StageBuilding,
		CreatedAt:   created,
		NonLanding:  NonLandingInput{TotalActions: 4, DoneActions: 1},
	}, now)
	assert.Equal(t, model.RecommendationKeepBuilding, ritual.Action)
	assert.False(t, ritual.DecisionDue)

	landing := Calculate(Input{
		SurfaceType: model.SurfaceLanding,
		Stage:       model.StageBuilding,
		CreatedAt:   created,
		Landing:     LandingInput{Visits: 2, TotalActions: 4, DoneActions: 1},
	}, now)
	assert.Equal(t, model.RecommendationKeepBuilding, landing.Action)
	assert.Equal(t, ColorBlue, landing.Color)
	assert.True(t, landing.DecisionDue)
	assert.Equal(t, "Es momento de decidir", landing.Title)
	assert.Equal(t, model.StageBuilding, landing.ForStage)
}

func TestCalculateNudgeSkipsDecidedTags(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	rec := Calculate(Input{
		SurfaceType: model.SurfaceMessages,
		Stage:       model.StageTesting,
		CreatedAt:   now.AddDate(0, 0, -60),
		NonLanding:  NonLandingInput{TotalActions: 2, DoneActions: 2, SelfResult: model.SelfResultAlto},
	}, now)
	assert.Equal(t, model.RecommendationAchieved, rec.Action)
	assert.False(t, rec.DecisionDue)
}

func TestCalculateUsesStoredDecisionWindow(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	rec := Calculate(Input{
		SurfaceType:         model.SurfaceRitual,
		CreatedAt:           now.AddDate(0, 0, -8),
		DecisionCadenceDays: 7,
	}, now)
	assert.True(t, rec.DecisionDue)
}

func assertClean(t *testing.T, rec model.Recommendation) {
	t.Helper()
	text := rec.Title + rec.Justification + strings.Join(rec.NextSteps, " ")
	assert.NotContains(t, text, "NaN")
	assert.NotContains(t, text, "Inf")
	assert.NotEmpty(t, rec.NextSteps)
	assert.LessOrEqual(t, len(rec.NextSteps), 3)
}
