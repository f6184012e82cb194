// Package service holds the business logic of the card service. Services
// depend on narrow store interfaces so they can be exercised with in-memory
// fakes in tests; the concrete implementations live in the store package.
package service

import (
	"context"
	"encoding/hex"
	"io"

	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/comm"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type CardStore interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id string) (*models.Card, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Card, error)
	ListIDsByUser(ctx context.Context, userID string) ([]string, error)
	IncrementViews(ctx context.Context, id string) error
	SetQRCodePath(ctx context.Context, id, path string) error
}

type VoiceModelStore interface {
	Upsert(ctx context.Context, m *models.VoiceModel) error
	GetByUserID(ctx context.Context, userID string) (*models.VoiceModel, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type ViewStore interface {
	Append(ctx context.Context, view *models.CardView) error
	ListByCard(ctx context.Context, cardID string) ([]*models.CardView, error)
}

// VoiceProvider is the outbound voice cloning / synthesis API.
type VoiceProvider interface {
	Configured() bool
	CloneVoice(ctx context.Context, name, description string, sample io.Reader) (string, error)
	Synthesize(ctx context.Context, voiceID, text string) ([]byte, error)
	DeleteVoice(ctx context.Context, voiceID string) error
}

// ViewPublisher fans card view events out to interested subscribers.
type ViewPublisher interface {
	PublishCardViewed(evt comm.CardViewedEvent) error
}

// newID builds ids like card_9f8a01bc: a prefix plus 8 hex chars of a v4 UUID.
func newID(prefix string) string {
	id := uuid.New()
	return prefix + "_" + hex.EncodeToString(id[:4])
}
