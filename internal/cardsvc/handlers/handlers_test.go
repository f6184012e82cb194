package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/evervow/card-services/internal/cardsvc/config"
	"github.com/evervow/card-services/internal/cardsvc/handlers"
	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/service"
	"github.com/evervow/card-services/internal/cardsvc/store"
	"github.com/evervow/card-services/internal/cardsvc/ws"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory stores backing the handler tests.

type memUserStore struct{ users map[string]*models.User }

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	for _, e := range m.users {
		if e.Username == u.Username {
			return store.ErrUsernameTaken
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

type memCardStore struct{ cards map[string]*models.Card }

func (m *memCardStore) Create(_ context.Context, c *models.Card) error {
	cp := *c
	m.cards[c.ID] = &cp
	return nil
}

func (m *memCardStore) GetByID(_ context.Context, id string) (*models.Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCardStore) ListByUser(_ context.Context, userID string) ([]*models.Card, error) {
	var out []*models.Card
	for _, c := range m.cards {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCardStore) ListIDsByUser(ctx context.Context, userID string) ([]string, error) {
	cards, err := m.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (m *memCardStore) IncrementViews(_ context.Context, id string) error {
	c, ok := m.cards[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Views++
	return nil
}

func (m *memCardStore) SetQRCodePath(_ context.Context, id, path string) error {
	c, ok := m.cards[id]
	if !ok {
		return store.ErrNotFound
	}
	c.QRCodePath = path
	return nil
}

type memVoiceModelStore struct{ models map[string]*models.VoiceModel }

func (m *memVoiceModelStore) Upsert(_ context.Context, vm *models.VoiceModel) error {
	cp := *vm
	m.models[vm.UserID] = &cp
	return nil
}

func (m *memVoiceModelStore) GetByUserID(_ context.Context, userID string) (*models.VoiceModel, error) {
	vm, ok := m.models[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *vm
	return &cp, nil
}

func (m *memVoiceModelStore) DeleteByUserID(_ context.Context, userID string) error {
	if _, ok := m.models[userID]; !ok {
		return store.ErrNotFound
	}
	delete(m.models, userID)
	return nil
}

type memViewStore struct{ views []*models.CardView }

func (m *memViewStore) Append(_ context.Context, v *models.CardView) error {
	cp := *v
	m.views = append([]*models.CardView{&cp}, m.views...)
	return nil
}

func (m *memViewStore) ListByCard(_ context.Context, cardID string) ([]*models.CardView, error) {
	var out []*models.CardView
	for _, v := range m.views {
		if v.CardID == cardID {
			out = append(out, v)
		}
	}
	return out, nil
}

type stubProvider struct{}

func (stubProvider) Configured() bool { return true }
func (stubProvider) CloneVoice(_ context.Context, _, _ string, _ io.Reader) (string, error) {
	return "voice-test", nil
}
func (stubProvider) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	return []byte("mp3 bytes"), nil
}
func (stubProvider) DeleteVoice(_ context.Context, _ string) error { return nil }

type env struct {
	srv       *httptest.Server
	cardStore *memCardStore
	viewStore *memViewStore
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	cfg := config.Config{
		Port:          "8000",
		JWTSecret:     "test-secret",
		PublicBaseURL: "http://localhost:3000",
		DataDir:       t.TempDir(),
	}
	require.NoError(t, cfg.EnsureDirs())

	users := &memUserStore{users: map[string]*models.User{}}
	cards := &memCardStore{cards: map[string]*models.Card{}}
	voiceModels := &memVoiceModelStore{models: map[string]*models.VoiceModel{}}
	views := &memViewStore{}

	voiceSvc := service.NewVoiceService(stubProvider{}, voiceModels, cfg.VoiceSamplesDir(), cfg.GeneratedAudioDir())
	qrSvc := service.NewQRService(cfg.PublicBaseURL, cfg.QRCodesDir())
	authSvc := service.NewAuthService(users, cards)
	cardSvc := service.NewCardService(cards, voiceSvc, qrSvc, cfg.GeneratedAudioDir())
	analyticsSvc := service.NewAnalyticsService(cards, views, nil)

	h := handlers.NewHandler(cfg, authSvc, cardSvc, voiceSvc, analyticsSvc, ws.NewHub())
	h.InitAuth()

	r := chi.NewRouter()
	h.SetRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &env{srv: srv, cardStore: cards, viewStore: views}
}

type apiResponse struct {
	Message   string          `json:"message"`
	Code      int             `json:"code"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	ErrorCode string          `json:"error_code"`
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

type authData struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

func register(t *testing.T, e *env, username, password string) authData {
	t.Helper()

	resp, out := doJSON(t, http.MethodPost, e.srv.URL+"/v1/auth/register", "", models.UserCredentials{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register failed: %s", out.Error)

	var data authData
	require.NoError(t, json.Unmarshal(out.Data, &data))
	return data
}

func createCard(t *testing.T, e *env, token, message string, sample []byte) models.CardResponse {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("message", message))
	if sample != nil {
		fw, err := mw.CreateFormFile("voice_sample", "sample.wav")
		require.NoError(t, err)
		_, err = fw.Write(sample)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/v1/cards", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create card failed: %s", out.Error)

	var card models.CardResponse
	require.NoError(t, json.Unmarshal(out.Data, &card))
	return card
}

func TestRegisterAndVerify(t *testing.T) {
	e := newTestEnv(t)

	data := register(t, e, "alice", "secret123")
	assert.NotEmpty(t, data.Token)
	assert.Regexp(t, `^user_[0-9a-f]{8}$`, data.User.ID)

	resp, out := doJSON(t, http.MethodGet, e.srv.URL+"/v1/auth/verify", data.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.UserResponse
	require.NoError(t, json.Unmarshal(out.Data, &user))
	assert.Equal(t, "alice", user.Username)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"username too short", "ab", "secret123"},
		{"username bad chars", "a lice!", "secret123"},
		{"password too short", "alice", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := doJSON(t, http.MethodPost, e.srv.URL+"/v1/auth/register", "", models.UserCredentials{
				Username: tt.username,
				Password: tt.password,
			})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_ERROR", out.ErrorCode)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	e := newTestEnv(t)

	register(t, e, "alice", "secret123")

	resp, out := doJSON(t, http.MethodPost, e.srv.URL+"/v1/auth/register", "", models.UserCredentials{
		Username: "alice",
		Password: "other456",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", out.ErrorCode)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	register(t, e, "alice", "secret123")

	resp, _ := doJSON(t, http.MethodPost, e.srv.URL+"/v1/auth/login", "", models.UserCredentials{
		Username: "alice",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, out := doJSON(t, http.MethodPost, e.srv.URL+"/v1/auth/login", "", models.UserCredentials{
		Username: "alice",
		Password: "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTHENTICATION_ERROR", out.ErrorCode)
}

func TestVerifyRequiresToken(t *testing.T) {
	e := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/v1/auth/verify", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateCardAndFetchPublicly(t *testing.T) {
	e := newTestEnv(t)
	auth := register(t, e, "alice", "secret123")

	sample := bytes.Repeat([]byte("abcd"), 1024) // 4KB, above the minimum
	card := createCard(t, e, auth.Token, "Dear {name}, you are invited to our wedding!", sample)
	assert.Regexp(t, `^card_[0-9a-f]{8}$`, card.ID)
	assert.NotEmpty(t, card.QRCodePath)

	// Recipient opens the card with their name; the clip is personalized.
	resp, out := doJSON(t, http.MethodGet, e.srv.URL+"/v1/cards/"+card.ID+"?recipient_name=Bob", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view models.CardPublicView
	require.NoError(t, json.Unmarshal(out.Data, &view))
	assert.Equal(t, card.ID, view.ID)
	assert.Contains(t, view.Message, "{name}")
	assert.Contains(t, view.AIVoicePath, "Bob")
}

func TestCreateCardMessageTooShort(t *testing.T) {
	e := newTestEnv(t)
	auth := register(t, e, "alice", "secret123")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("message", "too short"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/v1/cards", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+auth.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCardNotFound(t *testing.T) {
	e := newTestEnv(t)

	resp, out := doJSON(t, http.MethodGet, e.srv.URL+"/v1/cards/card_deadbeef", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", out.ErrorCode)
}

func TestMyCards(t *testing.T) {
	e := newTestEnv(t)
	alice := register(t, e, "alice", "secret123")
	bob := register(t, e, "bob", "secret123")

	createCard(t, e, alice.Token, "Dear {name}, welcome to our celebration!", nil)
	createCard(t, e, alice.Token, "Hello {name}, thank you for joining us!", nil)

	resp, out := doJSON(t, http.MethodGet, e.srv.URL+"/v1/cards/my-cards", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cards []models.CardResponse
	require.NoError(t, json.Unmarshal(out.Data, &cards))
	assert.Len(t, cards, 2)

	resp, out = doJSON(t, http.MethodGet, e.srv.URL+"/v1/cards/my-cards", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(out.Data, &cards))
	assert.Empty(t, cards)
}

func TestUserCardsByID(t *testing.T) {
	e := newTestEnv(t)
	alice := register(t, e, "alice", "secret123")
	bob := register(t, e, "bob", "secret123")

	createCard(t, e, alice.Token, "Dear {name}, welcome to our celebration!", nil)
	createCard(t, e, alice.Token, "Hello {name}, thank you for joining us!", nil)

	resp, out := doJSON(t, http.MethodGet, e.srv.URL+"/v1/cards/user/"+alice.User.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cards []models.CardResponse
	require.NoError(t, json.Unmarshal(out.Data, &cards))
	assert.Len(t, cards, 2)

	// Another user's id answers forbidden, not an empty list.
	resp, out = doJSON(t, http.MethodGet, e.srv.URL+"/v1/cards/user/"+alice.User.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "AUTHORIZATION_ERROR", out.ErrorCode)
}

func TestQRCodeServed(t *testing.T) {
	e := newTestEnv(t)
	auth := register(t, e, "alice", "secret123")
	card := createCard(t, e, auth.Token, "Dear {name}, you are invited to our wedding!", nil)

	resp, err := http.Get(e.srv.URL + "/v1/cards/" + card.ID + "/qr-code")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestIncrementViews(t *testing.T) {
	e := newTestEnv(t)
	auth := register(t, e, "alice", "secret123")
	card := createCard(t, e, auth.Token, "Dear {name}, you are invited to our wedding!", nil)

	resp, _ := doJSON(t, http.MethodPut, e.srv.URL+"/v1/cards/"+card.ID+"/views", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := e.cardStore.GetByID(context.Background(), card.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)
}

func TestAnalyticsFlow(t *testing.T) {
	e := newTestEnv(t)
	alice := register(t, e, "alice", "secret123")
	mallory := register(t, e, "mallory", "secret123")
	card := createCard(t, e, alice.Token, "Dear {name}, you are invited to our wedding!", nil)

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, http.MethodPost, e.srv.URL+"/v1/analytics/track", "", models.ViewTrack{
			CardID:     card.ID,
			ViewerName: fmt.Sprintf("Guest %d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, out := doJSON(t, http.MethodGet, e.srv.URL+"/v1/analytics/card/"+card.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var analytics models.CardAnalytics
	require.NoError(t, json.Unmarshal(out.Data, &analytics))
	assert.Equal(t, 3, analytics.TotalViews)
	assert.Equal(t, 3, analytics.UniqueViewers)

	// Only the owner may read a card's analytics.
	resp, out = doJSON(t, http.MethodGet, e.srv.URL+"/v1/analytics/card/"+card.ID, mallory.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "AUTHORIZATION_ERROR", out.ErrorCode)

	resp, out = doJSON(t, http.MethodGet, e.srv.URL+"/v1/analytics/user", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dashboard []models.UserCardAnalytics
	require.NoError(t, json.Unmarshal(out.Data, &dashboard))
	require.Len(t, dashboard, 1)
	assert.Equal(t, 3, dashboard[0].TotalViews)
}

func TestVoiceModelLifecycle(t *testing.T) {
	e := newTestEnv(t)
	auth := register(t, e, "alice", "secret123")

	// No model yet.
	resp, _ := doJSON(t, http.MethodGet, e.srv.URL+"/v1/voice/model", auth.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Clone from an uploaded sample.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "voice.mp3")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("abcd"), 1024))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/v1/voice/clone", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+auth.Token)

	cloneResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer cloneResp.Body.Close()
	require.Equal(t, http.StatusCreated, cloneResp.StatusCode)

	// Model is now visible.
	resp, out := doJSON(t, http.MethodGet, e.srv.URL+"/v1/voice/model", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var model models.VoiceModel
	require.NoError(t, json.Unmarshal(out.Data, &model))
	assert.Equal(t, "voice-test", model.VoiceID)

	// Synthesize with it.
	resp, out = doJSON(t, http.MethodPost, e.srv.URL+"/v1/voice/synthesize", auth.Token, map[string]string{
		"text":           "Dear {name}, welcome to our wedding!",
		"recipient_name": "Bob",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var synth map[string]string
	require.NoError(t, json.Unmarshal(out.Data, &synth))
	require.NotEmpty(t, synth["audio_path"])

	// The generated clip is downloadable by filename.
	parts := strings.Split(synth["audio_path"], "/")
	filename := parts[len(parts)-1]

	audioResp, err := http.Get(e.srv.URL + "/v1/voice/audio/" + filename)
	require.NoError(t, err)
	defer audioResp.Body.Close()
	require.Equal(t, http.StatusOK, audioResp.StatusCode)

	audio, err := io.ReadAll(audioResp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3 bytes"), audio)

	// Delete, then it is gone.
	resp, _ = doJSON(t, http.MethodDelete, e.srv.URL+"/v1/voice/model", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, e.srv.URL+"/v1/voice/model", auth.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
