package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"uirecorder/internal/api/handlers"
	"uirecorder/internal/capture"
	"uirecorder/internal/models"
	"uirecorder/internal/session"
	"uirecorder/internal/stream"
	"uirecorder/internal/users"
	"uirecorder/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRecorder struct {
	mu    sync.Mutex
	sink  capture.Sink
	alive bool
}

func (r *stubRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alive = false
	return nil
}

func (r *stubRecorder) SetLanguage(string) {}

func (r *stubRecorder) Highlight(_ context.Context, locator string) (bool, error) {
	return locator == "//button", nil
}

func (r *stubRecorder) Alive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alive
}

type stubLauncher struct {
	mu        sync.Mutex
	recorders map[string]*stubRecorder
}

func (l *stubLauncher) Launch(s *models.Session, sink capture.Sink) (session.Recorder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := &stubRecorder{sink: sink, alive: true}
	l.recorders[s.ID] = rec
	return rec, nil
}

func (l *stubLauncher) SetLanguage(string) {}

func (l *stubLauncher) emit(id string, rec models.ActionRecord) {
	l.mu.Lock()
	r := l.recorders[id]
	l.mu.Unlock()
	r.sink.Record(rec)
}

type apiClient struct {
	t        *testing.T
	router   http.Handler
	launcher *stubLauncher
	token    string
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	logger, _ := test.NewNullLogger()
	launcher := &stubLauncher{recorders: map[string]*stubRecorder{}}
	hub := stream.NewHub(logger)
	svc := session.NewService(session.NewMemoryRepository(), launcher,
		session.WithPublisher(hub), session.WithLogger(logger))
	j := auth.NewJWT("test-secret", time.Hour)
	h := handlers.New(svc, users.NewMemoryStore(), j, hub, logger)
	return &apiClient{t: t, router: SetupRoutes(h, j, logger), launcher: launcher}
}

func (a *apiClient) do(method, path string, body interface{}) (envelope, *httptest.ResponseRecorder) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return env, w
}

func (a *apiClient) ok(method, path string, body interface{}, out interface{}) {
	a.t.Helper()
	env, _ := a.do(method, path, body)
	require.Equal(a.t, 200, env.Code, "%s %s: %s", method, path, env.Message)
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
}

func (a *apiClient) login(name string) {
	a.t.Helper()
	a.token = ""
	a.ok(http.MethodPost, "/api/v1/auth/register", handlers.RegisterRequest{
		Username: name, Email: name + "@example.test", Password: "secret123",
	}, nil)
	var resp handlers.LoginResponse
	a.ok(http.MethodPost, "/api/v1/auth/login", handlers.LoginRequest{Username: name, Password: "secret123"}, &resp)
	require.NotEmpty(a.t, resp.Token)
	a.token = resp.Token
}

func TestHealthIsPublic(t *testing.T) {
	api := newAPI(t)
	env, _ := api.do(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, 200, env.Code)

	env, _ = api.do(http.MethodGet, "/api/v1/sessions", nil)
	assert.Equal(t, 401, env.Code)
}

func TestAuthFlow(t *testing.T) {
	api := newAPI(t)
	api.login("alice")

	var profile models.User
	api.ok(http.MethodGet, "/api/v1/users/profile", nil, &profile)
	assert.Equal(t, "alice", profile.Username)

	api.token = ""
	env, _ := api.do(http.MethodPost, "/api/v1/auth/register", handlers.RegisterRequest{
		Username: "alice", Email: "other@example.test", Password: "secret123",
	})
	assert.Equal(t, 409, env.Code)

	env, _ = api.do(http.MethodPost, "/api/v1/auth/login", handlers.LoginRequest{Username: "alice", Password: "wrong-pass"})
	assert.Equal(t, 401, env.Code)

	env, _ = api.do(http.MethodPost, "/api/v1/auth/login", handlers.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.Equal(t, 401, env.Code)

	env, _ = api.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "al"})
	assert.Equal(t, 400, env.Code)
}

func TestRecordingLifecycle(t *testing.T) {
	api := newAPI(t)
	api.login("alice")

	var sess models.Session
	api.ok(http.MethodPost, "/api/v1/sessions", map[string]string{"url": "https://shop.example.test/"}, &sess)
	assert.Equal(t, "Record 1", sess.Name)

	env, _ := api.do(http.MethodPost, "/api/v1/sessions", map[string]string{"url": "https://shop.example.test/"})
	assert.Equal(t, 409, env.Code)

	var state session.State
	api.ok(http.MethodGet, "/api/v1/sessions/state", nil, &state)
	assert.True(t, state.IsRecording)
	assert.Equal(t, sess.ID, state.CurrentSession)

	api.launcher.emit(sess.ID, models.ActionRecord{Action: models.ActionClick, Description: "Clicked the \"Buy\" button", Locator: "//button"})
	api.launcher.emit(sess.ID, models.ActionRecord{Action: models.ActionSubmit, Description: "Submitted the form"})

	var found map[string]bool
	api.ok(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/highlight", map[string]string{"locator": "//button"}, &found)
	assert.True(t, found["found"])

	var stopped models.Session
	api.ok(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/stop", nil, &stopped)
	assert.Equal(t, models.SessionStopped, stopped.Status)
	assert.Equal(t, 2, stopped.ActionCount)

	env, _ = api.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/stop", nil)
	assert.Equal(t, 409, env.Code)
	env, _ = api.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/highlight", map[string]string{"locator": "//button"})
	assert.Equal(t, 409, env.Code)

	var list []models.Session
	api.ok(http.MethodGet, "/api/v1/sessions", nil, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ActionCount)
}

func TestStartValidation(t *testing.T) {
	api := newAPI(t)
	api.login("alice")

	env, _ := api.do(http.MethodPost, "/api/v1/sessions", map[string]string{"url": "not a url"})
	assert.Equal(t, 400, env.Code)
	env, _ = api.do(http.MethodPost, "/api/v1/sessions", map[string]string{"url": "https://x.test", "device": "Nokia 3310"})
	assert.Equal(t, 400, env.Code)
	env, _ = api.do(http.MethodPost, "/api/v1/sessions", map[string]string{})
	assert.Equal(t, 400, env.Code)
}

func TestStepEditingAndExport(t *testing.T) {
	api := newAPI(t)
	api.login("alice")

	var sess models.Session
	api.ok(http.MethodPost, "/api/v1/sessions", map[string]string{"url": "https://shop.example.test/", "name": "Checkout"}, &sess)
	base := "/api/v1/sessions/" + sess.ID
	for _, d := range []string{"one", "two", "three"} {
		api.launcher.emit(sess.ID, models.ActionRecord{Action: models.ActionClick, Description: d})
	}

	var detail models.SessionDetail
	api.ok(http.MethodPut, base+"/steps/2", map[string]string{"field": "expectation", "value": "cart opens"}, &detail)
	assert.Equal(t, "cart opens", detail.Steps[1].Expectation)

	env, _ := api.do(http.MethodPut, base+"/steps/2", map[string]string{"field": "url", "value": "x"})
	assert.Equal(t, 400, env.Code)
	env, _ = api.do(http.MethodPut, base+"/steps/9", map[string]string{"field": "description", "value": "x"})
	assert.Equal(t, 404, env.Code)
	env, _ = api.do(http.MethodDelete, base+"/steps/zero", nil)
	assert.Equal(t, 400, env.Code)

	api.ok(http.MethodDelete, base+"/steps/1", nil, &detail)
	require.Len(t, detail.Steps, 2)
	assert.Equal(t, "two", detail.Steps[0].Description)
	assert.Equal(t, 1, detail.Steps[0].Step)

	api.ok(http.MethodPost, base+"/steps", map[string]interface{}{
		"after":  1,
		"record": map[string]string{"action": "keydown", "key": "Enter", "description": "Pressed Enter"},
	}, &detail)
	require.Len(t, detail.Steps, 3)
	assert.Equal(t, "Pressed Enter", detail.Steps[1].Description)
	assert.Equal(t, 3, detail.Steps[2].Step)

	env, _ = api.do(http.MethodPost, base+"/steps", map[string]interface{}{"record": map[string]string{"action": "hover"}})
	assert.Equal(t, 400, env.Code)

	api.ok(http.MethodPut, base+"/description", map[string]string{"value": "buys one item"}, nil)
	api.ok(http.MethodPut, base+"/precondition", map[string]string{"value": "cart is empty"}, nil)
	env, _ = api.do(http.MethodPut, base+"/name", map[string]string{"value": "  "})
	assert.Equal(t, 400, env.Code)

	_, w := api.do(http.MethodGet, base+"/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), sess.ID+".yaml")
	var exported struct {
		Name         string                `yaml:"name"`
		Description  string                `yaml:"description"`
		Precondition string                `yaml:"precondition"`
		Steps        []models.ActionRecord `yaml:"steps"`
	}
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &exported))
	assert.Equal(t, "Checkout", exported.Name)
	assert.Equal(t, "buys one item", exported.Description)
	assert.Equal(t, "cart is empty", exported.Precondition)
	require.Len(t, exported.Steps, 3)
	assert.Equal(t, "cart opens", exported.Steps[0].Expectation)

	_, w = api.do(http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"steps"`)

	env, _ = api.do(http.MethodGet, base+"/export?format=csv", nil)
	assert.Equal(t, 400, env.Code)
}

func TestSessionsAreScopedToTheirOwner(t *testing.T) {
	api := newAPI(t)
	api.login("alice")
	var sess models.Session
	api.ok(http.MethodPost, "/api/v1/sessions", map[string]string{"url": "https://shop.example.test/"}, &sess)

	api.login("bob")
	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/sessions/" + sess.ID},
		{http.MethodPost, "/api/v1/sessions/" + sess.ID + "/stop"},
		{http.MethodDelete, "/api/v1/sessions/" + sess.ID},
		{http.MethodGet, "/api/v1/ws/sessions/" + sess.ID},
	} {
		env, _ := api.do(req.method, req.path, nil)
		assert.Equal(t, 404, env.Code, req.path)
	}

	var list []models.Session
	api.ok(http.MethodGet, "/api/v1/sessions", nil, &list)
	assert.Empty(t, list)
}

func TestDeleteActiveSession(t *testing.T) {
	api := newAPI(t)
	api.login("alice")
	var sess models.Session
	api.ok(http.MethodPost, "/api/v1/sessions", map[string]string{"url": "https://shop.example.test/"}, &sess)

	api.ok(http.MethodDelete, "/api/v1/sessions/"+sess.ID, nil, nil)
	env, _ := api.do(http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
	assert.Equal(t, 404, env.Code)

	var state session.State
	api.ok(http.MethodGet, "/api/v1/sessions/state", nil, &state)
	assert.False(t, state.IsRecording)
}

func TestLanguage(t *testing.T) {
	api := newAPI(t)
	api.login("alice")

	var got struct {
		Language  string   `json:"language"`
		Supported []string `json:"supported"`
	}
	api.ok(http.MethodGet, "/api/v1/language", nil, &got)
	assert.Equal(t, "tr", got.Language)
	assert.Equal(t, []string{"tr", "en"}, got.Supported)

	api.ok(http.MethodPut, "/api/v1/language", map[string]string{"language": "en-GB"}, &got)
	assert.Equal(t, "en", got.Language)

	env, _ := api.do(http.MethodPut, "/api/v1/language", map[string]string{})
	assert.Equal(t, 400, env.Code)
}

func TestResolveEndpoint(t *testing.T) {
	api := newAPI(t)
	api.login("alice")

	page := `<html><body><form><label for="q">Search</label><input id="q" name="q"></form></body></html>`
	var rec models.ActionRecord
	api.ok(http.MethodPost, "/api/v1/resolve", map[string]string{
		"html": page, "target": "#q", "action": "input", "value": "shoes", "language": "en",
	}, &rec)
	assert.Equal(t, `Typed "shoes" into the "Search" field`, rec.Description)
	assert.True(t, rec.LocatorUnique)

	env, _ := api.do(http.MethodPost, "/api/v1/resolve", map[string]string{"html": page, "target": "#nope"})
	assert.Equal(t, 404, env.Code)
	env, _ = api.do(http.MethodPost, "/api/v1/resolve", map[string]string{"html": page, "target": "#q", "action": "change"})
	assert.Equal(t, 400, env.Code)
}

func TestDevices(t *testing.T) {
	api := newAPI(t)
	api.login("alice")

	var devices []struct {
		Name      string `json:"name"`
		IsDefault bool   `json:"is_default"`
	}
	api.ok(http.MethodGet, "/api/v1/devices", nil, &devices)
	require.NotEmpty(t, devices)
	defaults := 0
	for _, d := range devices {
		if d.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}
