package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
	_ "time/tzdata"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicu/vicu-api/internal/app"
	"github.com/vicu/vicu-api/internal/config"
	"github.com/vicu/vicu-api/internal/db/dbtest"
	"github.com/vicu/vicu-api/internal/whatsapp"
)

const (
	testAppSecret       = "app-secret"
	testSchedulerSecret = "scheduler-secret-0123456789"
)

type testServer struct {
	handler http.Handler
	app     *app.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		AppName:                    "Vicu",
		AppEnv:                     "development",
		AppURL:                     "http://localhost:8090",
		DBDriver:                   "sqlite",
		DBOptionalColumns:          "auto",
		AuthJWTSecret:              "test-secret",
		WhatsAppAppSecret:          testAppSecret,
		WhatsAppVerifyToken:        "verify-me",
		WhatsAppDefaultCountryCode: "52",
		RemindersEnabled:           true,
		SchedulerWebhookSecret:     testSchedulerSecret,
		StatsFetchTimeout:          time.Second,
		DefaultDailyGoal:           3,
	}

	a, err := app.NewWithDB(cfg, dbtest.Open(t))
	require.NoError(t, err)
	return &testServer{handler: SetupRoutes(a), app: a}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.app.AuthService.SignJWT(userID, nil)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type goalResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Status         string  `json:"status"`
	SurfaceType    string  `json:"surface_type"`
	ActionCadence  string  `json:"action_cadence"`
	Deadline       *string `json:"deadline"`
	DeadlineSource string  `json:"deadline_source"`
}

type stepResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type detailResponse struct {
	Experiment goalResponse   `json:"experiment"`
	Actions    []stepResponse `json:"actions"`
	Steps      []stepResponse `json:"steps"`
	Progress   struct {
		CompletedSteps int `json:"completed_steps"`
		TotalSteps     int `json:"total_steps"`
	} `json:"progress"`
	Offer *struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"transition_offer"`
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s.do(t, http.MethodGet, "/api/rhythm", "", nil)
	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vicu_http_request_duration_seconds")
}

func TestStatsAnonymous(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/me/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, float64(0), stats["xp"])
	assert.Equal(t, float64(1), stats["level"])

	rec = s.do(t, http.MethodGet, "/api/me/stats", "garbage", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/experiments", "/api/me/profile", "/api/me/xp-events"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRhythm(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/rhythm?surface_type=ritual&context=personal&experiment_type=validacion", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"action_cadence":"daily","metrics_cadence":"none","decision_cadence_days":28}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/rhythm?surface_type=billboard", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "surface_type", decode[map[string]string](t, rec)["field"])
}

func TestExperimentCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1")

	rec := s.do(t, http.MethodPost, "/api/experiments", token, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title", decode[map[string]string](t, rec)["field"])

	rec = s.do(t, http.MethodPost, "/api/experiments", token, map[string]any{"title": "x", "deadline": "15/03/2099"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "deadline", decode[map[string]string](t, rec)["field"])

	rec = s.do(t, http.MethodPost, "/api/experiments", token, map[string]any{"title": "x", "bogus": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/experiments", token, map[string]any{
		"title":        "Vender galletas",
		"surface_type": "landing",
		"deadline":     "2099-01-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[detailResponse](t, rec)
	id := created.Experiment.ID
	assert.Equal(t, "queued", created.Experiment.Status)
	assert.Equal(t, "user", created.Experiment.DeadlineSource)
	assert.NotEmpty(t, created.Actions)
	assert.Len(t, created.Steps, 3)

	rec = s.do(t, http.MethodGet, "/api/experiments", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Experiments []goalResponse `json:"experiments"`
	}](t, rec)
	require.Len(t, list.Experiments, 1)

	rec = s.do(t, http.MethodGet, "/api/experiments/"+id, s.token(t, "user-2"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/experiments/"+id, token, map[string]any{"title": "Vender galletas de avena", "deadline": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[goalResponse](t, rec)
	assert.Equal(t, "Vender galletas de avena", updated.Title)
	require.NotNil(t, updated.Deadline)
	assert.Equal(t, "ai_suggested", updated.DeadlineSource)

	rec = s.do(t, http.MethodPatch, "/api/experiments/"+id, token, map[string]any{"action_cadence": "hourly"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/experiments/"+id+"/self-result", token, map[string]any{"self_result": "alto"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/experiments/"+id+"/actions/"+created.Actions[0].ID+"/complete", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", decode[stepResponse](t, rec).Status)

	rec = s.do(t, http.MethodDelete, "/api/experiments/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/experiments/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStageFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1")

	rec := s.do(t, http.MethodPost, "/api/experiments", token, map[string]any{"title": "Aprender a nadar"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[detailResponse](t, rec).Experiment.ID
	base := "/api/experiments/" + id

	rec = s.do(t, http.MethodPost, base+"/transition", token, map[string]any{"to": "flying"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/transition", token, map[string]any{"to": "achieved"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/transition", token, map[string]any{"to": "building"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, base+"/transition", token, map[string]any{"to": "testing"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[detailResponse](t, rec)
	require.Len(t, detail.Steps, 3)

	for _, step := range detail.Steps {
		rec = s.do(t, http.MethodPost, base+"/steps/"+step.ID+"/complete", token, map[string]any{"notes": "hecho"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	result := decode[map[string]any](t, rec)
	assert.NotNil(t, result["transition_offer"])

	rec = s.do(t, http.MethodPost, base+"/steps/missing/complete", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, base, token, nil)
	detail = decode[detailResponse](t, rec)
	assert.Equal(t, 3, detail.Progress.CompletedSteps)
	require.NotNil(t, detail.Offer)
	assert.Equal(t, "testing", detail.Offer.To)

	// An empty body takes the offered move.
	rec = s.do(t, http.MethodPost, base+"/transition", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[struct {
		Experiment goalResponse   `json:"experiment"`
		Steps      []stepResponse `json:"steps"`
	}](t, rec)
	assert.Equal(t, "testing", moved.Experiment.Status)
	assert.Len(t, moved.Steps, 3)

	rec = s.do(t, http.MethodGet, base+"/recommendation", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "testing", decode[map[string]any](t, rec)["for_stage"])

	rec = s.do(t, http.MethodPost, base+"/recommendation/refresh", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, base+"/recommendation/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/steps/generate", token, map[string]any{"situation": "poco tiempo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "fallback", decode[map[string]any](t, rec)["source"])

	rec = s.do(t, http.MethodGet, "/api/me/stats", token, nil)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, float64(3), stats["total_checkins"])

	rec = s.do(t, http.MethodGet, "/api/me/xp-events?limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[struct {
		Events []map[string]any `json:"events"`
	}](t, rec)
	assert.Len(t, events.Events, 2)

	rec = s.do(t, http.MethodGet, "/api/me/xp-events?limit=-1", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicLanding(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1")

	rec := s.do(t, http.MethodPost, "/api/experiments", token, map[string]any{"title": "Clases de yoga", "surface_type": "landing"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[detailResponse](t, rec).Experiment.ID

	rec = s.do(t, http.MethodPost, "/public/landing/"+id+"/visit", "", map[string]any{"source": "instagram"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/public/landing/"+id+"/lead", "", map[string]any{"contact": "5512345678"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/public/landing/"+id+"/lead", "", map[string]any{"contact": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/public/landing/nope/visit", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/experiments/"+id+"/landing", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"visits":1,"leads":1}`, rec.Body.String())
}

func TestWhatsAppVerify(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func inboundPayload(id, from, text string) []byte {
	return []byte(fmt.Sprintf(`{"entry":[{"changes":[{"value":{"messages":[
		{"id":%q,"from":%q,"timestamp":"1773176400","type":"text","text":{"body":%q}}
	]}}]}]}`, id, from, text))
}

func (s *testServer) postWhatsApp(t *testing.T, payload []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewReader(payload))
	req.Header.Set(whatsapp.SignatureHeader, signature)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postScheduler(t *testing.T, payload []byte, secret string) *httptest.ResponseRecorder {
	t.Helper()
	wh, err := standardwebhooks.NewWebhookRaw([]byte(secret))
	require.NoError(t, err)
	now := time.Now()
	signature, err := wh.Sign("msg_1", now, payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/scheduler", bytes.NewReader(payload))
	req.Header.Set("webhook-id", "msg_1")
	req.Header.Set("webhook-timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("webhook-signature", signature)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestWhatsAppReceiveSignature(t *testing.T) {
	s := newTestServer(t)
	payload := inboundPayload("wamid.in1", "5215500000000", "1")

	rec := s.postWhatsApp(t, payload, "sha256=00")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.postWhatsApp(t, payload, whatsapp.Sign(testAppSecret, payload))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReminderRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1")

	rec := s.do(t, http.MethodPut, "/api/me/profile", token, map[string]any{
		"name":            "Luis",
		"phone":           "55 1234 5678",
		"whatsapp_opt_in": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "+525512345678", decode[map[string]any](t, rec)["phone"])

	rec = s.do(t, http.MethodPost, "/api/experiments", token, map[string]any{"title": "Meditar", "surface_type": "ritual"})
	require.Equal(t, http.StatusCreated, rec.Code)
	goal := decode[detailResponse](t, rec).Experiment
	require.Equal(t, "daily", goal.ActionCadence)

	rec = s.do(t, http.MethodPost, "/api/experiments/"+goal.ID+"/transition", token, map[string]any{"to": "building"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.postScheduler(t, []byte(`{"type":"reminders.due"}`), "wrong-secret-0123456789")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.postScheduler(t, []byte(`{"type":"reminders.due"}`), testSchedulerSecret)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"sent":1,"skipped":0,"failed":0}`, rec.Body.String())

	rec = s.postScheduler(t, []byte(`{"type":"something.else"}`), testSchedulerSecret)
	assert.Equal(t, http.StatusOK, rec.Code)

	payload := inboundPayload("wamid.in1", "525512345678", "listo")
	rec = s.postWhatsApp(t, payload, whatsapp.Sign(testAppSecret, payload))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/experiments/"+goal.ID, token, nil)
	detail := decode[detailResponse](t, rec)
	assert.Equal(t, 1, detail.Progress.CompletedSteps)
}
