package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"cryptolab/internal/auth"
	"cryptolab/internal/config"
	"cryptolab/internal/logger"
	"cryptolab/internal/models"
	"cryptolab/internal/spn"
	"cryptolab/internal/store"
)

type memStore struct {
	mu       sync.Mutex
	learners map[string]*models.Learner
	sessions map[string]*models.Session
	runs     []models.Run
	spn      map[string]models.SPNSetting
}

func newMemStore(t *testing.T, email, password string, roles ...string) (*memStore, string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	l := &models.Learner{ID: uuid.NewString(), Email: email, PasswordHash: hash, IsActive: true}
	for i, r := range roles {
		l.Roles = append(l.Roles, models.Role{ID: i + 1, Name: r})
	}
	return &memStore{
		learners: map[string]*models.Learner{l.ID: l},
		sessions: map[string]*models.Session{},
		spn:      map[string]models.SPNSetting{},
	}, l.ID
}

func (m *memStore) LearnerByEmail(_ context.Context, email string) (*models.Learner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.learners {
		if l.Email == email {
			return l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) LearnerByID(_ context.Context, id string) (*models.Learner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.learners[id]; ok {
		return l, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.JTI] = s
	return nil
}

func (m *memStore) Session(_ context.Context, jti string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[jti]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) RevokeSession(_ context.Context, jti string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[jti]
	if !ok || s.RevokedAt != nil {
		return store.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *memStore) RecordRun(_ context.Context, run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memStore) ListRuns(_ context.Context, learnerID, topic string) ([]models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Run
	for _, r := range m.runs {
		if r.LearnerID != nil && *r.LearnerID == learnerID && (topic == "" || r.Topic == topic) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListRecentRuns(_ context.Context, topic string) ([]models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Run
	for _, r := range m.runs {
		if topic == "" || r.Topic == topic {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) SaveSPNSetting(_ context.Context, st *models.SPNSetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spn[st.LearnerID] = *st
	return nil
}

func (m *memStore) LoadSPNSetting(_ context.Context, learnerID string) (*models.SPNSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.spn[learnerID]; ok {
		return &st, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) snapshot() ([]models.Run, map[string]models.SPNSetting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := append([]models.Run(nil), m.runs...)
	settings := make(map[string]models.SPNSetting, len(m.spn))
	for k, v := range m.spn {
		settings[k] = v
	}
	return runs, settings
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	code, out := call(t, srv, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "ada@lab.test", "password": "pw"})
	if code != http.StatusOK {
		t.Fatalf("login = %d %v", code, out)
	}
	tok, _ := out["token"].(string)
	return tok
}

func TestLoginSessionAndHistory(t *testing.T) {
	st, id := newMemStore(t, "ada@lab.test", "pw", "Learner")
	srv := newTestServer(t, st)

	if code, _ := call(t, srv, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "ada@lab.test", "password": "nope"}); code != http.StatusUnauthorized {
		t.Fatalf("wrong password = %d", code)
	}
	tok := login(t, srv)

	if code, _ := call(t, srv, http.MethodPost, "/v1/spn/setup", "", map[string]any{}); code != http.StatusUnauthorized {
		t.Fatalf("spn without token = %d", code)
	}
	code, out := call(t, srv, http.MethodGet, "/v1/me", tok, nil)
	if code != http.StatusOK || out["id"] != id {
		t.Fatalf("me = %d %v", code, out)
	}

	if code, out = call(t, srv, http.MethodPost, "/v1/numtheory/gcd", tok, map[string]any{"a": 48, "b": 18}); code != http.StatusOK {
		t.Fatalf("gcd = %d %v", code, out)
	}
	if code, out = call(t, srv, http.MethodPost, "/v1/numtheory/modinv", tok, map[string]any{"a": 6, "m": 9}); code != http.StatusUnprocessableEntity {
		t.Fatalf("modinv = %d %v", code, out)
	}
	runs, _ := st.snapshot()
	if len(runs) != 2 || runs[1].Status != models.StatusFailed {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].LearnerID == nil || *runs[0].LearnerID != id {
		t.Errorf("public run not attributed to the learner: %+v", runs[0])
	}

	setup := map[string]any{"rounds": 1, "sbox": "E4D12FB83A6C5907", "key": "0000000000000000"}
	if code, out = call(t, srv, http.MethodPost, "/v1/spn/setup", tok, setup); code != http.StatusOK {
		t.Fatalf("setup = %d %v", code, out)
	}
	_, settings := st.snapshot()
	if got := settings[id]; got.SBoxHex != "E4D12FB83A6C5907" || got.Rounds != 1 {
		t.Errorf("saved setting = %+v", got)
	}

	code, out = call(t, srv, http.MethodGet, "/v1/history?topic=spn", tok, nil)
	if code != http.StatusOK || out["count"] != 1.0 {
		t.Fatalf("spn history = %d %v", code, out)
	}
	code, out = call(t, srv, http.MethodGet, "/v1/history", tok, nil)
	if code != http.StatusOK || out["count"] != 3.0 {
		t.Fatalf("history = %d %v", code, out)
	}

	if code, _ = call(t, srv, http.MethodGet, "/v1/instructor/runs", tok, nil); code != http.StatusForbidden {
		t.Errorf("instructor route as learner = %d", code)
	}

	if code, _ = call(t, srv, http.MethodPost, "/v1/auth/logout", tok, nil); code != http.StatusNoContent {
		t.Fatalf("logout = %d", code)
	}
	if code, _ = call(t, srv, http.MethodGet, "/v1/me", tok, nil); code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d", code)
	}
}

func TestSPNSettingRestoredFromStore(t *testing.T) {
	st, id := newMemStore(t, "ada@lab.test", "pw", "Learner", "Instructor")
	st.spn[id] = models.SPNSetting{LearnerID: id, Rounds: 1, SBoxHex: "E4D12FB83A6C5907", Key: "0000000000000000"}

	srv := newTestServerWith(t, Deps{
		Store:  st,
		Signer: auth.NewSigner("test-secret", time.Hour),
		Limits: config.Limits{RSAMaxPrime: 1_000_000, MaxBlocks: 4, MaxTrialN: 1_000_000},
		SPN:    spn.NewRegistry(),
		Log:    logger.Nop(),
	})
	tok := login(t, srv)

	code, out := call(t, srv, http.MethodPost, "/v1/spn/encrypt", tok, map[string]any{"block": "0000000000000000"})
	if code != http.StatusOK || out["ciphertext"] != "1110111011101110" {
		t.Fatalf("encrypt with restored setting = %d %v", code, out)
	}
	if code, _ = call(t, srv, http.MethodGet, "/v1/instructor/runs", tok, nil); code != http.StatusOK {
		t.Errorf("instructor route = %d", code)
	}
}

// spnFaultStore delays setting loads until release is closed and can fail
// saves on demand.
type spnFaultStore struct {
	*memStore
	loading  chan struct{}
	release  chan struct{}
	once     sync.Once
	failSave atomic.Bool
}

func (f *spnFaultStore) LoadSPNSetting(ctx context.Context, learnerID string) (*models.SPNSetting, error) {
	if f.release != nil {
		f.once.Do(func() { close(f.loading) })
		<-f.release
	}
	return f.memStore.LoadSPNSetting(ctx, learnerID)
}

func (f *spnFaultStore) SaveSPNSetting(ctx context.Context, st *models.SPNSetting) error {
	if f.failSave.Load() {
		return errors.New("connection reset")
	}
	return f.memStore.SaveSPNSetting(ctx, st)
}

type reply struct {
	code int
	body map[string]any
}

// callAsync is call for use from a goroutine.
func callAsync(t *testing.T, srv *httptest.Server, method, path, token string, body any) <-chan reply {
	ch := make(chan reply, 1)
	go func() {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(body)
		req, err := http.NewRequest(method, srv.URL+path, &buf)
		if err != nil {
			t.Error(err)
			ch <- reply{}
			return
		}
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Error(err)
			ch <- reply{}
			return
		}
		defer resp.Body.Close()
		out := map[string]any{}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		ch <- reply{resp.StatusCode, out}
	}()
	return ch
}

func configRounds(out map[string]any) any {
	cfg, _ := out["config"].(map[string]any)
	return cfg["rounds"]
}

func TestSPNRestoreWaitsAndKeepsNewerSetup(t *testing.T) {
	mem, id := newMemStore(t, "ada@lab.test", "pw", "Learner")
	mem.spn[id] = models.SPNSetting{LearnerID: id, Rounds: 1, SBoxHex: "E4D12FB83A6C5907", Key: "0000000000000000"}
	st := &spnFaultStore{memStore: mem, loading: make(chan struct{}), release: make(chan struct{})}
	srv := newTestServer(t, st)
	tok := login(t, srv)

	first := callAsync(t, srv, http.MethodGet, "/v1/spn/config", tok, nil)
	<-st.loading
	setup := callAsync(t, srv, http.MethodPost, "/v1/spn/setup", tok,
		map[string]any{"rounds": 3, "sbox": "E4D12FB83A6C5907", "key": "1111111111111111"})
	enc := callAsync(t, srv, http.MethodPost, "/v1/spn/encrypt", tok, map[string]any{"block": "0000000000000000"})
	// let setup and encrypt queue behind the load
	time.Sleep(50 * time.Millisecond)
	close(st.release)

	if r := <-first; r.code != http.StatusOK {
		t.Errorf("config during restore = %d %v", r.code, r.body)
	}
	if r := <-enc; r.code != http.StatusOK {
		t.Errorf("encrypt during restore = %d %v", r.code, r.body)
	}
	if r := <-setup; r.code != http.StatusOK {
		t.Fatalf("setup during restore = %d %v", r.code, r.body)
	}
	code, out := call(t, srv, http.MethodGet, "/v1/spn/config", tok, nil)
	if code != http.StatusOK || configRounds(out) != 3.0 {
		t.Errorf("config after restore = %d %v", code, out)
	}
	_, settings := mem.snapshot()
	if settings[id].Rounds != 3 {
		t.Errorf("saved rounds = %d", settings[id].Rounds)
	}
}

func TestSPNSetupSaveFailureKeepsPrevious(t *testing.T) {
	mem, _ := newMemStore(t, "ada@lab.test", "pw", "Learner")
	st := &spnFaultStore{memStore: mem}
	srv := newTestServer(t, st)
	tok := login(t, srv)

	st.failSave.Store(true)
	setup := map[string]any{"rounds": 2, "sbox": "E4D12FB83A6C5907", "key": "1111111111111111"}
	if code, _ := call(t, srv, http.MethodPost, "/v1/spn/setup", tok, setup); code != http.StatusInternalServerError {
		t.Fatalf("setup with failing store = %d", code)
	}
	code, out := call(t, srv, http.MethodGet, "/v1/spn/config", tok, nil)
	if code != http.StatusConflict || out["kind"] != "Unconfigured" {
		t.Fatalf("config after failed first setup = %d %v", code, out)
	}

	st.failSave.Store(false)
	setup["rounds"] = 1
	if code, out = call(t, srv, http.MethodPost, "/v1/spn/setup", tok, setup); code != http.StatusOK {
		t.Fatalf("setup = %d %v", code, out)
	}
	st.failSave.Store(true)
	setup["rounds"] = 4
	if code, _ = call(t, srv, http.MethodPost, "/v1/spn/setup", tok, setup); code != http.StatusInternalServerError {
		t.Fatalf("second setup with failing store = %d", code)
	}
	code, out = call(t, srv, http.MethodGet, "/v1/spn/config", tok, nil)
	if code != http.StatusOK || configRounds(out) != 1.0 {
		t.Errorf("config after failed replace = %d %v", code, out)
	}
}

func TestLogoutDropsSPNEngine(t *testing.T) {
	st, id := newMemStore(t, "ada@lab.test", "pw", "Learner")
	srv := newTestServer(t, st)
	tok := login(t, srv)

	setup := map[string]any{"rounds": 2, "sbox": "E4D12FB83A6C5907", "key": "1111111111111111"}
	if code, out := call(t, srv, http.MethodPost, "/v1/spn/setup", tok, setup); code != http.StatusOK {
		t.Fatalf("setup = %d %v", code, out)
	}
	if code, _ := call(t, srv, http.MethodPost, "/v1/auth/logout", tok, nil); code != http.StatusNoContent {
		t.Fatalf("logout = %d", code)
	}

	// changed behind the service's back; only a fresh engine sees it
	st.mu.Lock()
	st.spn[id] = models.SPNSetting{LearnerID: id, Rounds: 4, SBoxHex: "E4D12FB83A6C5907", Key: "0000000000000000"}
	st.mu.Unlock()

	tok = login(t, srv)
	code, out := call(t, srv, http.MethodGet, "/v1/spn/config", tok, nil)
	if code != http.StatusOK || configRounds(out) != 4.0 {
		t.Errorf("config after re-login = %d %v", code, out)
	}
}
