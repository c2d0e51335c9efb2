package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/vicu/vicu-api/internal/db"
	"github.com/vicu/vicu-api/internal/db/dbtest"
	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/planner"
	"github.com/vicu/vicu-api/internal/repository"
)

type sentMessage struct {
	To   string
	Body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendText(ctx context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return fmt.Sprintf("wamid.%d", len(f.sent)), nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type testEnv struct {
	experiments *ExperimentService
	checkins    *CheckinService
	recs        *RecommendationService
	stages      *StageService
	stats       *StatsService
	profiles    *ProfileService
	landing     *LandingService
	reminders   *ReminderService
	sender      *fakeSender
	statsRepo   repository.UserStatsRepository
}

// 15:00 in Mexico City, clear of the time-of-day badges.
var testNow = time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := dbtest.Open(t)
	caps := db.AllCapabilities()

	experimentRepo := repository.NewExperimentRepository(conn, caps)
	actionRepo := repository.NewActionRepository(conn)
	checkinRepo := repository.NewCheckinRepository(conn, caps)
	recRepo := repository.NewRecommendationRepository(conn)
	statsRepo := repository.NewUserStatsRepository(conn)
	profileRepo := repository.NewProfileRepository(conn)
	landingRepo := repository.NewLandingRepository(conn)
	reminderRepo := repository.NewReminderRepository(conn)

	p := planner.New(nil, nil, nil)
	email := NewEmailService("", "noreply@example.com", "http://localhost", "Vicu", true)
	sender := &fakeSender{}

	env := &testEnv{sender: sender, statsRepo: statsRepo}
	env.profiles = NewProfileService(profileRepo, "52")
	env.stats = NewStatsService(statsRepo, env.profiles, nil, time.Second, 3)
	env.experiments = NewExperimentService(experimentRepo, actionRepo, checkinRepo, recRepo, p)
	env.checkins = NewCheckinService(experimentRepo, checkinRepo, env.profiles, env.stats, p)
	env.recs = NewRecommendationService(experimentRepo, actionRepo, landingRepo, recRepo)
	env.stages = NewStageService(experimentRepo, checkinRepo, env.checkins, env.recs, env.stats, env.profiles, email, nil)
	env.landing = NewLandingService(experimentRepo, landingRepo, "52")

	reminders, err := NewReminderService(experimentRepo, checkinRepo, profileRepo, reminderRepo, env.checkins, sender, email, nil, "http://localhost")
	require.NoError(t, err)
	env.reminders = reminders

	env.setNow(testNow)
	return env
}

func (e *testEnv) setNow(now time.Time) {
	c := func() time.Time { return now }
	e.experiments.now = c
	e.checkins.now = c
	e.recs.now = c
	e.stages.now = c
	e.stats.now = c
	e.profiles.now = c
	e.landing.now = c
	e.reminders.now = c
}

func (e *testEnv) createGoal(t *testing.T, userID string, in CreateExperimentInput) *model.Experiment {
	t.Helper()
	detail, err := e.experiments.Create(context.Background(), userID, in)
	require.NoError(t, err)
	return detail.Experiment
}

// completeStage marks every pending step of the goal's current stage done.
func (e *testEnv) completeStage(t *testing.T, userID, experimentID string) *CheckinResult {
	t.Helper()
	ctx := context.Background()
	detail, err := e.experiments.Detail(ctx, userID, experimentID)
	require.NoError(t, err)
	require.NotEmpty(t, detail.Steps)

	var last *CheckinResult
	for _, step := range detail.Steps {
		if step.IsDone() {
			continue
		}
		last, err = e.checkins.CompleteStep(ctx, userID, experimentID, step.ID, "")
		require.NoError(t, err)
	}
	return last
}
