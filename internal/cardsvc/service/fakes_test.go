package service

import (
	"context"
	"io"
	"sort"

	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/store"
	"github.com/evervow/card-services/internal/comm"
)

// In-memory fakes of the store interfaces, shared by the service tests.

type fakeUserStore struct {
	users map[string]*models.User // by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return store.ErrUsernameTaken
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

type fakeCardStore struct {
	cards     map[string]*models.Card
	createErr error
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[string]*models.Card)}
}

func (f *fakeCardStore) Create(_ context.Context, card *models.Card) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *card
	f.cards[card.ID] = &cp
	return nil
}

func (f *fakeCardStore) GetByID(_ context.Context, id string) (*models.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCardStore) ListByUser(_ context.Context, userID string) ([]*models.Card, error) {
	var out []*models.Card
	for _, c := range f.cards {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCardStore) ListIDsByUser(ctx context.Context, userID string) ([]string, error) {
	cards, err := f.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (f *fakeCardStore) IncrementViews(_ context.Context, id string) error {
	c, ok := f.cards[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Views++
	return nil
}

func (f *fakeCardStore) SetQRCodePath(_ context.Context, id, path string) error {
	c, ok := f.cards[id]
	if !ok {
		return store.ErrNotFound
	}
	c.QRCodePath = path
	return nil
}

type fakeVoiceModelStore struct {
	models map[string]*models.VoiceModel // by user id
}

func newFakeVoiceModelStore() *fakeVoiceModelStore {
	return &fakeVoiceModelStore{models: make(map[string]*models.VoiceModel)}
}

func (f *fakeVoiceModelStore) Upsert(_ context.Context, m *models.VoiceModel) error {
	cp := *m
	f.models[m.UserID] = &cp
	return nil
}

func (f *fakeVoiceModelStore) GetByUserID(_ context.Context, userID string) (*models.VoiceModel, error) {
	m, ok := f.models[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeVoiceModelStore) DeleteByUserID(_ context.Context, userID string) error {
	if _, ok := f.models[userID]; !ok {
		return store.ErrNotFound
	}
	delete(f.models, userID)
	return nil
}

type fakeViewStore struct {
	views     []*models.CardView // newest first
	appendErr error
}

func (f *fakeViewStore) Append(_ context.Context, view *models.CardView) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	cp := *view
	f.views = append([]*models.CardView{&cp}, f.views...)
	return nil
}

func (f *fakeViewStore) ListByCard(_ context.Context, cardID string) ([]*models.CardView, error) {
	var out []*models.CardView
	for _, v := range f.views {
		if v.CardID == cardID {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeProvider struct {
	configured bool
	voiceID    string
	audio      []byte

	cloneErr error
	synthErr error
	delErr   error

	cloneCalls  int
	synthTexts  []string
	deletedIDs  []string
	cloneNames  []string
	synthVoices []string
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) CloneVoice(_ context.Context, name, _ string, _ io.Reader) (string, error) {
	f.cloneCalls++
	f.cloneNames = append(f.cloneNames, name)
	if f.cloneErr != nil {
		return "", f.cloneErr
	}
	return f.voiceID, nil
}

func (f *fakeProvider) Synthesize(_ context.Context, voiceID, text string) ([]byte, error) {
	f.synthVoices = append(f.synthVoices, voiceID)
	f.synthTexts = append(f.synthTexts, text)
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	return f.audio, nil
}

func (f *fakeProvider) DeleteVoice(_ context.Context, voiceID string) error {
	f.deletedIDs = append(f.deletedIDs, voiceID)
	return f.delErr
}

type fakePublisher struct {
	events []comm.CardViewedEvent
	err    error
}

func (f *fakePublisher) PublishCardViewed(evt comm.CardViewedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, evt)
	return nil
}
