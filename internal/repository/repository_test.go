package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicu/vicu-api/internal/db"
	"github.com/vicu/vicu-api/internal/db/dbtest"
	"github.com/vicu/vicu-api/internal/model"
)

func newExperiment(userID string, now time.Time) *model.Experiment {
	return &model.Experiment{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Title:               "Vender pan de masa madre",
		SurfaceType:         model.SurfaceLanding,
		ExperimentType:      model.ExperimentTypeValidacion,
		Context:             model.ContextBusiness,
		Status:              model.StageQueued,
		DeadlineSource:      model.DeadlineSourceAISuggested,
		SelfResult:          model.SelfResultNone,
		ActionCadence:       "2-3_per_week",
		MetricsCadence:      "2-3_per_week",
		DecisionCadenceDays: 14,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestExperimentRepository(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewExperimentRepository(conn, db.AllCapabilities())
	now := time.Now().UTC().Truncate(time.Second)

	e := newExperiment("user-1", now)
	deadline := now.AddDate(0, 0, 10)
	e.Deadline = &deadline
	require.NoError(t, repo.Create(ctx, e))

	got, err := repo.ByID(ctx, "user-1", e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, model.StageQueued, got.Status)
	assert.Equal(t, model.DeadlineSourceAISuggested, got.DeadlineSource)
	require.NotNil(t, got.Deadline)
	assert.True(t, deadline.Equal(*got.Deadline))

	_, err = repo.ByID(ctx, "someone-else", e.ID)
	assert.ErrorIs(t, err, ErrExperimentNotFound)

	got.Status = model.StageBuilding
	got.CheckinsCount = 2
	require.NoError(t, repo.Update(ctx, got))

	active, err := repo.ListByStatus(ctx, model.StageBuilding, model.StageTesting)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].CheckinsCount)

	list, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "user-1", e.ID))
	_, err = repo.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrExperimentNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "user-1", e.ID), ErrExperimentNotFound)
}

func TestExperimentRepositoryWithoutOptionalColumns(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	_, err := conn.Exec("ALTER TABLE experiments DROP COLUMN deadline_source")
	require.NoError(t, err)

	repo := NewExperimentRepository(conn, db.Capabilities{})
	e := newExperiment("user-1", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, e))
	require.NoError(t, repo.Update(ctx, e))

	got, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DeadlineSource)
}

func TestDeleteRemovesChildren(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	now := time.Now().UTC()
	experiments := NewExperimentRepository(conn, db.AllCapabilities())
	actions := NewActionRepository(conn)
	landing := NewLandingRepository(conn)

	e := newExperiment("user-1", now)
	require.NoError(t, experiments.Create(ctx, e))
	require.NoError(t, actions.CreateBatch(ctx, []*model.Action{{
		ID: uuid.New().String(), ExperimentID: e.ID, Channel: "whatsapp", ActionType: "mensaje",
		Title: "t", Content: "c", Status: model.ActionStatusPending, SuggestedOrder: 1, CreatedAt: now,
	}}))
	require.NoError(t, landing.RecordVisit(ctx, e.ID, "ig", now))

	require.NoError(t, experiments.Delete(ctx, "user-1", e.ID))

	total, _, err := actions.Counts(ctx, e.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
	visits, err := landing.VisitCount(ctx, e.ID)
	require.NoError(t, err)
	assert.Zero(t, visits)
}

func TestActionRepository(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	now := time.Now().UTC()
	repo := NewActionRepository(conn)

	var batch []*model.Action
	for i := 1; i <= 3; i++ {
		due := now.AddDate(0, 0, i)
		batch = append(batch, &model.Action{
			ID: uuid.New().String(), ExperimentID: "exp-1", Channel: "whatsapp", ActionType: "mensaje",
			Title: "Acción", Content: "Texto", Status: model.ActionStatusPending,
			SuggestedOrder: i, SuggestedDueDate: &due, CreatedAt: now,
		})
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	require.NoError(t, repo.Complete(ctx, "exp-1", batch[1].ID, now))
	assert.ErrorIs(t, repo.Complete(ctx, "exp-2", batch[1].ID, now), ErrActionNotFound)

	total, done, err := repo.Counts(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, done)

	list, err := repo.ByExperiment(ctx, "exp-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].SuggestedOrder)
	assert.True(t, list[1].IsDone())
	assert.NotNil(t, list[1].CompletedAt)
}

func TestCheckinRepository(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	now := time.Now().UTC()
	repo := NewCheckinRepository(conn, db.AllCapabilities())

	tagged := &model.Checkin{
		ID: uuid.New().String(), ExperimentID: "exp-1", Status: model.CheckinStatusPending,
		StepTitle: "Paso", Effort: model.EffortMedio, StepOrder: 1, CreatedAt: now,
	}
	tagged.SetScope(model.ForStage(model.StageTesting))
	legacy := &model.Checkin{
		ID: uuid.New().String(), ExperimentID: "exp-1", Status: model.CheckinStatusPending,
		StepTitle: "Viejo", StepOrder: 2, CreatedAt: now,
	}
	require.NoError(t, repo.CreateBatch(ctx, []*model.Checkin{tagged, legacy}))

	list, err := repo.ByExperiment(ctx, "exp-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Scope().Matches(model.StageTesting))
	assert.False(t, list[0].Scope().IsLegacy())
	assert.Equal(t, model.EffortMedio, list[0].Effort)
	assert.True(t, list[1].Scope().IsLegacy())

	changed, err := repo.Complete(ctx, "exp-1", tagged.ID, "salió bien", now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Complete(ctx, "exp-1", tagged.ID, "otra vez", now)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.Complete(ctx, "exp-1", "missing", "", now)
	assert.ErrorIs(t, err, ErrCheckinNotFound)

	got, err := repo.ByID(ctx, "exp-1", tagged.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDone())
	assert.Equal(t, "salió bien", got.UserNotes)
}

func TestCheckinRepositoryWithoutEffortColumn(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	_, err := conn.Exec("ALTER TABLE experiment_checkins DROP COLUMN effort")
	require.NoError(t, err)

	repo := NewCheckinRepository(conn, db.Capabilities{})
	c := &model.Checkin{
		ID: uuid.New().String(), ExperimentID: "exp-1", Status: model.CheckinStatusPending,
		StepTitle: "Paso", Effort: model.EffortMedio, StepOrder: 1, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateBatch(ctx, []*model.Checkin{c}))

	list, err := repo.ByExperiment(ctx, "exp-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Effort)
}

func TestUserStatsRepository(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewUserStatsRepository(conn)
	now := time.Now().UTC()

	_, err := repo.ByUserID(ctx, "user-1")
	assert.ErrorIs(t, err, ErrStatsNotFound)

	stats := model.NewUserStats("user-1")
	stats.XP = 60
	stats.Level = 2
	stats.Badges.Add("streak_3")
	stats.LastCheckinDate = &now
	stats.UpdatedAt = now
	require.NoError(t, repo.Upsert(ctx, stats))

	stats.XP = 75
	require.NoError(t, repo.Upsert(ctx, stats))

	got, err := repo.ByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 75, got.XP)
	assert.Equal(t, 2, got.Level)
	assert.True(t, got.Badges.Has("streak_3"))
	require.NotNil(t, got.LastCheckinDate)

	require.NoError(t, repo.AppendXPEvents(ctx, []model.XPEvent{
		{ID: uuid.New().String(), UserID: "user-1", Amount: 10, Reason: model.XPReasonCheckin, CreatedAt: now},
		{ID: uuid.New().String(), UserID: "user-1", Amount: 5, Reason: model.XPReasonStreakBonus, CreatedAt: now.Add(time.Second)},
	}))
	events, err := repo.XPEvents(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.XPReasonStreakBonus, events[0].Reason)
}

func TestRecommendationRepository(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewRecommendationRepository(conn)
	now := time.Now().UTC()

	_, err := repo.Current(ctx, "exp-1")
	assert.ErrorIs(t, err, ErrRecommendationNotFound)

	first := &model.StoredRecommendation{
		ID: uuid.New().String(), ExperimentID: "exp-1", ForStage: model.StageBuilding,
		Action: model.RecommendationKeepBuilding, Title: "Sigue", Justification: "j",
		NextSteps: model.StringList{"a", "b"}, Color: "blue", CreatedAt: now,
	}
	require.NoError(t, repo.Replace(ctx, first))

	second := &model.StoredRecommendation{
		ID: uuid.New().String(), ExperimentID: "exp-1", ForStage: model.StageTesting,
		Action: model.RecommendationKeepTesting, Title: "Prueba", Justification: "j",
		NextSteps: model.StringList{"c"}, Color: "yellow", DecisionDue: true, CreatedAt: now.Add(time.Second),
	}
	require.NoError(t, repo.Replace(ctx, second))

	current, err := repo.Current(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, model.StringList{"c"}, current.NextSteps)
	assert.True(t, current.DecisionDue)

	history, err := repo.History(ctx, "exp-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].ArchivedAt)
	assert.NotNil(t, history[1].ArchivedAt)
}

func TestProfileRepository(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewProfileRepository(conn)
	now := time.Now().UTC()

	p := &model.Profile{
		ID: uuid.New().String(), UserID: "user-1", Name: "Ana", Phone: "+525512345678",
		WhatsAppOptIn: true, Timezone: model.DefaultTimezone, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Upsert(ctx, p))

	p.Name = "Ana María"
	p.ID = uuid.New().String()
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.ByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)
	assert.True(t, got.WhatsAppOptIn)

	byPhone, err := repo.ByPhone(ctx, "+525512345678")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byPhone.UserID)

	_, err = repo.ByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLandingRepository(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewLandingRepository(conn)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordVisit(ctx, "exp-1", "", now))
	}
	require.NoError(t, repo.RecordLead(ctx, &model.LandingLead{
		ID: uuid.New().String(), ExperimentID: "exp-1", Contact: "ana@example.com", CreatedAt: now,
	}))

	visits, err := repo.VisitCount(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, 3, visits)

	leads, err := repo.LeadCount(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, leads)

	list, err := repo.Leads(ctx, "exp-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ana@example.com", list[0].Contact)
}

func TestReminderRepository(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewReminderRepository(conn)
	now := time.Now().UTC()

	m := &model.Reminder{
		ID: uuid.New().String(), UserID: "user-1", ExperimentID: "exp-1",
		Channel: model.ReminderChannelWhatsApp, ProviderMessageID: "wamid.1",
		Status: model.ReminderStatusSent, LocalDate: "2026-03-10", SentAt: now,
	}
	require.NoError(t, repo.Create(ctx, m))

	exists, err := repo.ExistsForDay(ctx, "exp-1", "2026-03-10")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForDay(ctx, "exp-1", "2026-03-11")
	require.NoError(t, err)
	assert.False(t, exists)

	dup := *m
	dup.ID = uuid.New().String()
	assert.Error(t, repo.Create(ctx, &dup))

	got, err := repo.ByProviderMessageID(ctx, "wamid.1")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	open, err := repo.LatestOpen(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, m.ID, open.ID)

	require.NoError(t, repo.SetStatus(ctx, m.ID, model.ReminderStatusDone, &now))
	_, err = repo.LatestOpen(ctx, "user-1")
	assert.ErrorIs(t, err, ErrReminderNotFound)
}
