package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"spirare/internal/api"
	"spirare/internal/clock"
	"spirare/internal/config"
	"spirare/internal/content"
	"spirare/internal/contentstore"
	"spirare/internal/narration"
	"spirare/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	store *contentstore.Store
	srv   *Server
	clock *clock.Manual
}

func newFixture(t *testing.T, synth narration.Synthesizer) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MustSeedFixture(t, store)
	manual := clock.NewManual(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	srv, err := New(cfg, store, synth, nil, WithClock(manual), WithVersion("test"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return &fixture{cfg: cfg, store: store, srv: srv, clock: manual}
}

func (f *fixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	body := `{"username":"` + testsupport.AdminUsername + `","password":"` + testsupport.AdminPassword + `"}`
	w := f.do(t, http.MethodPost, "/api/admin/login", body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	var resp api.LoginResponse
	decode(t, w, &resp)
	if resp.Token == "" {
		t.Fatal("expected token")
	}
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestMeditationComposesSession(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/meditation/Calm", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.SessionResponse
	decode(t, w, &resp)
	session := resp.Session
	if session.Category != "calm" || len(session.Stages) != 2 {
		t.Fatalf("unexpected session %+v", session)
	}
	opening := session.Stages[0].Practices
	if opening[0].Text != "Sit tall." || opening[0].IsSpecific {
		t.Fatalf("expected base posture phrase, got %+v", opening[0])
	}
	if opening[1].Text != "Breathe." || !opening[1].IsSpecific {
		t.Fatalf("expected themed intention, got %+v", opening[1])
	}
	if got := session.Stages[1].Practices[0].Text; got != "Open your eyes." {
		t.Fatalf("unexpected closing phrase %q", got)
	}
}

func TestMeditationUnknownCategory(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/meditation/nope", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp api.ErrorResponse
	decode(t, w, &resp)
	if resp.Error == "" || resp.Kind != "not_found" || resp.RequestID != "req-42" {
		t.Fatalf("unexpected error body %+v", resp)
	}
	if got := w.Header().Get(RequestIDHeader); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/api/status", "", "")
	if len(w.Header().Get(RequestIDHeader)) != 36 {
		t.Fatalf("expected generated uuid, got %q", w.Header().Get(RequestIDHeader))
	}
}

func TestMetronomeSettingsClampAndPersist(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/metronome-settings", "", "")
	var settings content.MetronomeSettings
	decode(t, w, &settings)
	if settings.PeriodMs != 1000 || settings.IsMuted {
		t.Fatalf("expected defaults, got %+v", settings)
	}

	w = f.do(t, http.MethodPut, "/metronome-settings", `{"periodMs":5000,"isMuted":true}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &settings)
	if settings.PeriodMs != 1800 || !settings.IsMuted {
		t.Fatalf("expected clamped settings, got %+v", settings)
	}

	w = f.do(t, http.MethodGet, "/metronome-settings", "", "")
	decode(t, w, &settings)
	if settings.PeriodMs != 1800 || !settings.IsMuted {
		t.Fatalf("expected persisted settings, got %+v", settings)
	}

	for _, body := range []string{`{"periodMs":-1}`, `{"tempo":60}`, ``} {
		if w := f.do(t, http.MethodPut, "/metronome-settings", body, ""); w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
	}
}

func TestMetronomePartialUpdateKeepsStoredFields(t *testing.T) {
	f := newFixture(t, nil)

	if w := f.do(t, http.MethodPut, "/metronome-settings", `{"periodMs":1400}`, ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w := f.do(t, http.MethodPut, "/metronome-settings", `{"isMuted":true}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var settings content.MetronomeSettings
	decode(t, w, &settings)
	if settings.PeriodMs != 1400 || !settings.IsMuted {
		t.Fatalf("expected period kept and muted, got %+v", settings)
	}

	w = f.do(t, http.MethodPut, "/metronome-settings", `{"periodMs":0,"isMuted":false}`, "")
	decode(t, w, &settings)
	if settings.PeriodMs != 1400 || settings.IsMuted {
		t.Fatalf("expected zero period to keep 1400 and unmute, got %+v", settings)
	}

	w = f.do(t, http.MethodGet, "/metronome-settings", "", "")
	decode(t, w, &settings)
	if settings.PeriodMs != 1400 || settings.IsMuted {
		t.Fatalf("expected persisted merge, got %+v", settings)
	}
}

func TestTTSReturnsAudio(t *testing.T) {
	var spoken string
	synth := narration.SynthesizerFunc(func(_ context.Context, text string) (narration.Audio, error) {
		spoken = text
		return narration.Audio{Data: []byte("RIFFdata"), MIMEType: "audio/wav"}, nil
	})
	f := newFixture(t, synth)

	w := f.do(t, http.MethodPost, "/api/tts", `{"text":"  Breathe in.  "}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if w.Body.String() != "RIFFdata" || spoken != "Breathe in." {
		t.Fatalf("unexpected body %q spoken %q", w.Body.String(), spoken)
	}

	if w := f.do(t, http.MethodPost, "/api/tts", `{"text":"   "}`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", w.Code)
	}
	long := `{"text":"` + strings.Repeat("a", maxTTSRunes+1) + `"}`
	if w := f.do(t, http.MethodPost, "/api/tts", long, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for long text, got %d", w.Code)
	}
}

func TestTTSFailures(t *testing.T) {
	f := newFixture(t, nil)
	if w := f.do(t, http.MethodPost, "/api/tts", `{"text":"hello"}`, ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when narration disabled, got %d", w.Code)
	}

	failing := narration.SynthesizerFunc(func(context.Context, string) (narration.Audio, error) {
		return narration.Audio{}, errors.New("socket exploded")
	})
	f = newFixture(t, failing)
	w := f.do(t, http.MethodPost, "/api/tts", `{"text":"hello"}`, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "socket exploded") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
}

func TestAdminAuth(t *testing.T) {
	f := newFixture(t, nil)

	if w := f.do(t, http.MethodGet, "/api/themes", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/themes", "", "made-up"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with unknown token, got %d", w.Code)
	}
	bad := `{"username":"admin","password":"wrong"}`
	if w := f.do(t, http.MethodPost, "/api/admin/login", bad, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", w.Code)
	}

	token := f.login(t)
	w := f.do(t, http.MethodGet, "/api/themes", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list api.ThemeListResponse
	decode(t, w, &list)
	if len(list.Themes) != 1 || list.Themes[0].Category != "calm" || list.Themes[0].Overrides != 1 {
		t.Fatalf("unexpected themes %+v", list.Themes)
	}

	f.clock.Advance(f.cfg.TokenTTL())
	if w := f.do(t, http.MethodGet, "/api/themes", "", token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after expiry, got %d", w.Code)
	}

	token = f.login(t)
	if w := f.do(t, http.MethodPost, "/api/admin/logout", "", token); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on logout, got %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/themes", "", token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	f := newFixture(t, nil)
	f.cfg.Admin.Password = ""
	body := `{"username":"admin","password":""}`
	if w := f.do(t, http.MethodPost, "/api/admin/login", body, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestThemeCRUD(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t)

	create := `{"category":"Deep Focus","title":"Focus","isActive":true,"structure":{"concentration":{"anchor":["Return to the breath."]}}}`
	w := f.do(t, http.MethodPost, "/api/themes", create, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created api.ThemeResponse
	decode(t, w, &created)
	if created.Theme.Category != "deep-focus" || created.Theme.ID == "" {
		t.Fatalf("unexpected created theme %+v", created.Theme)
	}

	if w := f.do(t, http.MethodPost, "/api/themes", create, token); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", w.Code)
	}
	invalid := `{"category":"x","title":"X","structure":{"opening":{"anchor":["nope"]}}}`
	if w := f.do(t, http.MethodPost, "/api/themes", invalid, token); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for misplaced practice, got %d", w.Code)
	}

	w = f.do(t, http.MethodPut, "/api/themes/deep-focus", `{"title":"Deep Focus","isActive":false}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", w.Code, w.Body.String())
	}
	var updated api.ThemeResponse
	decode(t, w, &updated)
	if updated.Theme.Title != "Deep Focus" || updated.Theme.IsActive || updated.Theme.ID != created.Theme.ID {
		t.Fatalf("unexpected updated theme %+v", updated.Theme)
	}

	if w := f.do(t, http.MethodDelete, "/api/themes/deep-focus", "", token); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/themes/deep-focus", "", token); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestSongCRUD(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t)

	w := f.do(t, http.MethodPost, "/api/songs", `{"title":"Rain","src":"/audio/rain.mp3","stage":"opening"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created api.SongResponse
	decode(t, w, &created)
	if created.Song.Volume != content.DefaultVolume || created.Song.FadeInMs != content.DefaultFadeMs {
		t.Fatalf("expected song defaults, got %+v", created.Song)
	}

	path := "/api/songs/" + created.Song.ID
	w = f.do(t, http.MethodPut, path, `{"title":"Rain","src":"/audio/rain.mp3","volume":0.8}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPut, path, `{"title":"Rain","src":"/audio/rain.mp3","volume":3}`, token); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for volume out of range, got %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/songs", "", token)
	var list api.SongListResponse
	decode(t, w, &list)
	if len(list.Songs) != 1 || list.Songs[0].Volume != 0.8 {
		t.Fatalf("unexpected songs %+v", list.Songs)
	}

	if w := f.do(t, http.MethodDelete, path, "", token); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, path, "", token); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestStructureAndPools(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t)

	w := f.do(t, http.MethodGet, "/api/structure", "", token)
	var structure api.StructureResponse
	decode(t, w, &structure)
	if structure.Slots != 3 {
		t.Fatalf("expected fixture structure, got %+v", structure)
	}

	w = f.do(t, http.MethodPut, "/api/structure", `{"opening":["grounding","posture"]}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPut, "/api/structure", `{"opening":["posture","posture"]}`, token); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate slot, got %d", w.Code)
	}

	if w := f.do(t, http.MethodPut, "/api/pools/opening/juggling", `{"phrases":["x"]}`, token); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown practice, got %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/api/pools/dreaming/posture", "", token); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown stage, got %d", w.Code)
	}
	w = f.do(t, http.MethodPut, "/api/pools/opening/grounding", `{"phrases":["Feel the floor.","  "]}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodGet, "/api/pools/opening/grounding", "", token)
	var pool api.PoolResponse
	decode(t, w, &pool)
	if len(pool.Pool.Phrases) != 1 || pool.Pool.Phrases[0] != "Feel the floor." {
		t.Fatalf("unexpected pool %+v", pool.Pool)
	}

	w = f.do(t, http.MethodGet, "/meditation/calm", "", "")
	var session api.SessionResponse
	decode(t, w, &session)
	if got := session.Session.Stages[0].Practices[0]; got.Practice != "grounding" || got.Text != "Feel the floor." {
		t.Fatalf("expected new structure and pool in session, got %+v", got)
	}
}

func TestDatabaseMaintenance(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t)

	w := f.do(t, http.MethodPost, "/api/db/seed?replace=true", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var seeded api.SeedResponse
	decode(t, w, &seeded)
	if seeded.Source != "embedded" || !seeded.Replace || seeded.Result.Pools != 16 {
		t.Fatalf("unexpected seed response %+v", seeded)
	}

	w = f.do(t, http.MethodPost, "/api/db/seed", "themes:\n  - {category: night, title: Night}\n", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for inline seed, got %d: %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPost, "/api/db/seed", "bogus: true\n", token); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad document, got %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/status", "", "")
	var status api.StatusResponse
	decode(t, w, &status)
	if status.Version != "test" || status.Backend != "sqlite" || status.Stats.Themes != seeded.Result.Themes+1 {
		t.Fatalf("unexpected status %+v", status)
	}

	w = f.do(t, http.MethodPost, "/api/db/backup", "", token)
	var backup api.BackupResponse
	decode(t, w, &backup)
	if _, err := os.Stat(backup.Path); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if backup.Themes != status.Stats.Themes {
		t.Fatalf("backup themes %d, want %d", backup.Themes, status.Stats.Themes)
	}

	w = f.do(t, http.MethodPost, "/api/db/backup?download=true", "", token)
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" || !strings.Contains(w.Body.String(), "category: night") {
		t.Fatalf("unexpected download %q: %s", ct, w.Body.String())
	}

	if w := f.do(t, http.MethodPost, "/api/db/drop", "", token); w.Code != http.StatusOK {
		t.Fatalf("expected 200 on drop, got %d", w.Code)
	}
	w = f.do(t, http.MethodGet, "/api/status", "", "")
	decode(t, w, &status)
	if status.Stats != (content.Stats{}) {
		t.Fatalf("expected empty stats, got %+v", status.Stats)
	}
	if w := f.do(t, http.MethodGet, "/meditation/calm", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after drop, got %d", w.Code)
	}
}

func TestStartHoldsInstanceLock(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer f.srv.Stop()
	addr := f.srv.Addr()
	if addr == "" {
		t.Fatal("expected bound address")
	}

	second, err := New(f.cfg, f.store, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := second.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	resp, err := http.Get("http://" + addr + "/api/status")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from live server, got %d", resp.StatusCode)
	}

	f.srv.Stop()
	if f.srv.Addr() != "" {
		t.Fatal("expected no address after stop")
	}
	if err := second.Start(ctx); err != nil {
		t.Fatalf("expected lock to be free after stop: %v", err)
	}
	second.Stop()
}
