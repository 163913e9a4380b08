package api

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valentine/internal/config"
	"valentine/internal/flow"
	"valentine/internal/middleware"
	"valentine/internal/models"
	"valentine/internal/payload"
	"valentine/internal/telemetry"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &env))
	}
	return resp, env
}

type memStore struct {
	mu      sync.Mutex
	created []telemetry.Record
	updates []telemetry.Patch
	err     error
}

func (s *memStore) CreateLog(_ context.Context, rec telemetry.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, rec)
	return "doc42", nil
}

func (s *memStore) UpdateLog(_ context.Context, _ string, patch telemetry.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.updates = append(s.updates, patch)
	return nil
}

func newLinkApp(recorder *telemetry.Recorder) *fiber.App {
	cfg := &config.Config{BaseURL: "https://valentine.example"}
	h := NewLinkHandler(recorder, cfg, config.DefaultContent())
	h.now = func() time.Time { return time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC) }

	app := fiber.New()
	app.Post("/api/links", h.Create)
	return app
}

func TestLinkHandler_Create(t *testing.T) {
	store := &memStore{}
	recorder := telemetry.NewRecorder(store)
	app := newLinkApp(recorder)

	resp, env := doRequest(t, app, http.MethodPost, "/api/links", `{"from":"  alex ","to":"sam"}`)
	recorder.Wait()
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "ok", env.Status)

	var got models.CreateLinkResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "doc42", got.SessionID)
	assert.True(t, strings.HasPrefix(got.URL, "https://valentine.example/?v="))

	inv, ok := payload.FromLink(got.URL)
	require.True(t, ok)
	assert.Equal(t, payload.Invitation{From: "Alex", To: "Sam", SessionID: "doc42"}, inv)

	decoded, ok := payload.Decode(got.Token)
	require.True(t, ok)
	assert.Equal(t, inv, decoded)

	assert.Equal(t, "Alex has a question for you, Sam 💌", got.Share.Text)
	assert.Contains(t, got.Share.WhatsApp, "https://wa.me/?text=")
	assert.Contains(t, got.Share.QRCode, "/api/share/qr?url=")

	require.Len(t, store.created, 1)
	assert.Equal(t, telemetry.DeviceMobile, store.created[0].DeviceType)
	require.Len(t, store.updates, 1)
	assert.Equal(t, telemetry.GeneratedURLPatch(got.URL), store.updates[0])
}

func TestLinkHandler_CreateWithoutTelemetry(t *testing.T) {
	app := newLinkApp(nil)

	resp, env := doRequest(t, app, http.MethodPost, "/api/links", `{"to":"Sam"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got models.CreateLinkResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Empty(t, got.SessionID)

	inv, ok := payload.FromLink(got.URL)
	require.True(t, ok)
	assert.Equal(t, payload.Invitation{To: "Sam"}, inv)
}

func TestLinkHandler_StoreFailureStillCreatesLink(t *testing.T) {
	recorder := telemetry.NewRecorder(&memStore{err: errors.New("down")})
	app := newLinkApp(recorder)

	resp, env := doRequest(t, app, http.MethodPost, "/api/links", `{"to":"Sam","from":"Alex"}`)
	recorder.Wait()
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got models.CreateLinkResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Empty(t, got.SessionID)
}

func TestLinkHandler_CreateCustomBase(t *testing.T) {
	app := newLinkApp(nil)

	_, env := doRequest(t, app, http.MethodPost, "/api/links", `{"to":"Sam","baseUrl":"https://other.example/love/"}`)

	var got models.CreateLinkResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, strings.HasPrefix(got.URL, "https://other.example/love/?v="))
}

func TestLinkHandler_CreateValidation(t *testing.T) {
	app := newLinkApp(nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"invalid json", `{`, "invalid request body"},
		{"missing recipient", `{"from":"Alex"}`, "to: Name is required"},
		{"blank recipient", `{"to":"   "}`, "to: Name is required"},
		{"recipient too long", `{"to":"` + strings.Repeat("a", 51) + `"}`, "to: Name is too long"},
		{"control char in sender", `{"to":"Sam","from":"Al\u0000ex"}`, "from: Name contains invalid characters"},
		{"bad base url", `{"to":"Sam","baseUrl":"javascript:alert(1)"}`, "URL must use http:// or https:// scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := doRequest(t, app, http.MethodPost, "/api/links", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}

func TestView(t *testing.T) {
	app := fiber.New()
	app.Get("/api/view", View)

	token := payload.Encode(payload.Invitation{From: "Alex", To: "Sam", SessionID: "s1"})

	tests := []struct {
		name  string
		query string
		want  models.ViewResponse
	}{
		{"token", "v=" + token, models.ViewResponse{Screen: "invitation", To: "Sam", From: "Alex", SessionID: "s1"}},
		{"legacy", "to=Sam&from=Alex", models.ViewResponse{Screen: "invitation", To: "Sam", From: "Alex"}},
		{"no payload", "", models.ViewResponse{Screen: "missing_name"}},
		{"garbage token", "v=%25%25%25", models.ViewResponse{Screen: "missing_name"}},
		{"missing name", "v=" + payload.Encode(payload.Invitation{From: "Alex", SessionID: "s1"}), models.ViewResponse{Screen: "missing_name", From: "Alex", SessionID: "s1"}},
		{"create route ignores payload", "path=/create&v=" + token, models.ViewResponse{Screen: "create"}},
		{"unknown path", "path=/elsewhere&v=" + token, models.ViewResponse{Screen: "invitation", To: "Sam", From: "Alex", SessionID: "s1"}},
		{"bad escape in token", "v=%zz", models.ViewResponse{Screen: "missing_name"}},
		{"semicolon drops its pair", "to=Sam;x=1&from=Alex", models.ViewResponse{Screen: "missing_name", From: "Alex"}},
		{"bad pair beside good token", "x=%zz&v=" + token, models.ViewResponse{Screen: "invitation", To: "Sam", From: "Alex", SessionID: "s1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := doRequest(t, app, http.MethodGet, "/api/view?"+tt.query, "")
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			var got models.ViewResponse
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

type recordedEvents struct {
	mu       sync.Mutex
	opened   []string
	missing  []string
	accepted []time.Duration
	declined []flow.InteractionEvent
}

func (r *recordedEvents) Opened(id string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, id)
}

func (r *recordedEvents) MissingName(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing = append(r.missing, id)
}

func (r *recordedEvents) Accepted(_ string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted = append(r.accepted, d)
}

func (r *recordedEvents) Declined(_ string, ev flow.InteractionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.declined = append(r.declined, ev)
}

func newSessionApp(events flow.Events) *fiber.App {
	h := NewSessionHandler(events)
	app := fiber.New()
	app.Post("/api/sessions/:id/opened", middleware.RequireSession, h.Opened)
	app.Post("/api/sessions/:id/missing-name", middleware.RequireSession, h.MissingName)
	app.Post("/api/sessions/:id/accepted", middleware.RequireSession, h.Accepted)
	app.Post("/api/sessions/:id/declined", middleware.RequireSession, h.Declined)
	return app
}

func TestSessionHandler_ForwardsEvents(t *testing.T) {
	events := &recordedEvents{}
	app := newSessionApp(events)

	requests := []struct {
		path string
		body string
	}{
		{"/api/sessions/doc42/opened", ""},
		{"/api/sessions/doc42/missing-name", ""},
		{"/api/sessions/doc42/accepted", `{"decisionSeconds":7}`},
		{"/api/sessions/doc42/declined", `{"attempt":6,"phase":"shrinking"}`},
	}
	for _, r := range requests {
		resp, _ := doRequest(t, app, http.MethodPost, r.path, r.body)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode, r.path)
	}

	assert.Equal(t, []string{"doc42"}, events.opened)
	assert.Equal(t, []string{"doc42"}, events.missing)
	assert.Equal(t, []time.Duration{7 * time.Second}, events.accepted)
	assert.Equal(t, []flow.InteractionEvent{{Attempt: 6, Phase: flow.PhaseShrinking}}, events.declined)
}

func TestSessionHandler_IgnoresBadInput(t *testing.T) {
	events := &recordedEvents{}
	app := newSessionApp(events)

	requests := []struct {
		path string
		body string
	}{
		{"/api/sessions/" + url.PathEscape("bad id!") + "/opened", ""},
		{"/api/sessions/doc42/accepted", `not json`},
		{"/api/sessions/doc42/declined", `{"attempt":0,"phase":"shrinking"}`},
		{"/api/sessions/doc42/declined", `{"attempt":2,"phase":"exploding"}`},
	}
	for _, r := range requests {
		resp, _ := doRequest(t, app, http.MethodPost, r.path, r.body)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode, r.path)
	}

	assert.Empty(t, events.opened)
	assert.Empty(t, events.accepted)
	assert.Empty(t, events.declined)
}

func TestSessionHandler_DecisionSecondsClamped(t *testing.T) {
	events := &recordedEvents{}
	app := newSessionApp(events)

	for _, body := range []string{`{"decisionSeconds":9223372036854775807}`, `{"decisionSeconds":-5}`} {
		resp, _ := doRequest(t, app, http.MethodPost, "/api/sessions/doc42/accepted", body)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode, body)
	}

	assert.Equal(t, []time.Duration{maxDecisionSeconds * time.Second, 0}, events.accepted)
}

func TestSessionHandler_StoreFailureStillAccepted(t *testing.T) {
	recorder := telemetry.NewRecorder(&memStore{err: errors.New("down")})
	app := newSessionApp(recorder)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/sessions/doc42/opened", "")
	recorder.Wait()
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}

func TestQRCode(t *testing.T) {
	app := fiber.New()
	app.Get("/api/share/qr", QRCode)

	target := "/api/share/qr?size=128&url=" + url.QueryEscape("https://valentine.example/?v=abc")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestQRCode_BadRequest(t *testing.T) {
	app := fiber.New()
	app.Get("/api/share/qr", QRCode)

	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"missing url", "", "URL is required"},
		{"unsafe url", "url=" + url.QueryEscape("javascript:alert(1)"), "URL must use http:// or https:// scheme"},
		{"bad size", "size=big&url=" + url.QueryEscape("https://valentine.example/"), "size must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := doRequest(t, app, http.MethodGet, "/api/share/qr?"+tt.query, "")
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
}
