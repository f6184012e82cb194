package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/store"

	log "github.com/sirupsen/logrus"
)

// VoiceGenerator is the slice of the voice service the card workflow needs.
type VoiceGenerator interface {
	SaveCardSample(cardID, ext string, data []byte) (string, error)
	CloneVoice(ctx context.Context, userID, samplePath string) (string, error)
	SynthesizeMessage(ctx context.Context, userID, message, recipientName string) (string, error)
	GetVoiceModel(ctx context.Context, userID string) (*models.VoiceModel, error)
}

// QRGenerator renders QR code PNGs for cards.
type QRGenerator interface {
	Generate(cardID string) (string, error)
	PNGPath(cardID string) string
}

// VoiceSample is an uploaded recording attached to a new card.
type VoiceSample struct {
	Ext  string
	Data []byte
}

// CardService orchestrates card creation: sample upload, voice cloning, QR
// generation, persistence. Cloning failure aborts the card and removes the
// orphaned sample file; QR failure is tolerated.
type CardService struct {
	cardStore CardStore
	voice     VoiceGenerator
	qr        QRGenerator
	audioDir  string
}

func NewCardService(cardStore CardStore, voice VoiceGenerator, qr QRGenerator, audioDir string) *CardService {
	return &CardService{
		cardStore: cardStore,
		voice:     voice,
		qr:        qr,
		audioDir:  audioDir,
	}
}

func (s *CardService) CreateCard(ctx context.Context, userID, message string, sample *VoiceSample) (*models.Card, error) {
	cardID := newID("card")

	var voiceSamplePath, aiVoicePath string

	if sample != nil {
		samplePath, err := s.voice.SaveCardSample(cardID, sample.Ext, sample.Data)
		if err != nil {
			return nil, err
		}
		voiceSamplePath = samplePath

		if _, err := s.voice.CloneVoice(ctx, userID, samplePath); err != nil {
			// The card is not created, so don't leave its sample behind.
			if rmErr := os.Remove(samplePath); rmErr != nil {
				log.Warnf("failed to clean up voice sample %s: %v", samplePath, rmErr)
			}
			return nil, err
		}

		// Where the default clip will land once synthesized.
		aiVoicePath = filepath.ToSlash(filepath.Join(s.audioDir, cardID+"_ai_voice.mp3"))
	}

	qrPath, err := s.qr.Generate(cardID)
	if err != nil {
		// A card without a QR code is still viewable by link.
		log.Warnf("qr code generation failed for card %s: %v", cardID, err)
		qrPath = ""
	}

	card := &models.Card{
		ID:              cardID,
		UserID:          userID,
		Message:         message,
		VoiceSamplePath: voiceSamplePath,
		AIVoicePath:     aiVoicePath,
		QRCodePath:      qrPath,
		CreatedAt:       time.Now().UTC(),
		Views:           0,
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		return nil, apperr.Internal("failed to save card", err)
	}

	return card, nil
}

func (s *CardService) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("card not found")
		}
		return nil, apperr.Internal("failed to retrieve card", err)
	}

	return card, nil
}

// GetPersonalizedCard returns the public view with a freshly synthesized clip
// for the recipient when the owner has a voice model. Synthesis failures fall
// back to the stored clip.
func (s *CardService) GetPersonalizedCard(ctx context.Context, cardID, recipientName string) (models.CardPublicView, error) {
	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return models.CardPublicView{}, err
	}

	view := card.PublicView()
	if recipientName == "" {
		return view, nil
	}

	model, err := s.voice.GetVoiceModel(ctx, card.UserID)
	if err != nil {
		log.Warnf("failed to load voice model for card %s: %v", cardID, err)
		return view, nil
	}
	if model == nil {
		return view, nil
	}

	audioPath, err := s.voice.SynthesizeMessage(ctx, card.UserID, card.Message, recipientName)
	if err != nil {
		log.Warnf("personalized synthesis failed for card %s: %v", cardID, err)
		return view, nil
	}
	view.AIVoicePath = audioPath

	return view, nil
}

func (s *CardService) GetUserCards(ctx context.Context, userID string) ([]models.CardResponse, error) {
	cards, err := s.cardStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to retrieve user cards", err)
	}

	out := make([]models.CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Response())
	}

	return out, nil
}

func (s *CardService) IncrementViews(ctx context.Context, cardID string) error {
	if err := s.cardStore.IncrementViews(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("card not found")
		}
		return apperr.Internal("failed to update view count", err)
	}

	return nil
}

// EnsureQRCode returns the path of the card's QR PNG, regenerating the file
// if it went missing from disk.
func (s *CardService) EnsureQRCode(ctx context.Context, cardID string) (string, error) {
	card, err := s.GetCard(ctx, cardID)
	if err != nil {
		return "", err
	}

	path := s.qr.PNGPath(cardID)
	if _, statErr := os.Stat(path); statErr == nil {
		return path, nil
	}

	generated, err := s.qr.Generate(cardID)
	if err != nil {
		return "", apperr.Internal("failed to generate qr code", err)
	}

	if card.QRCodePath != generated {
		if err := s.cardStore.SetQRCodePath(ctx, cardID, generated); err != nil {
			log.Warnf("failed to record qr code path for card %s: %v", cardID, err)
		}
	}

	return s.qr.PNGPath(cardID), nil
}

// PersonalizedAudio synthesizes (or reuses) the clip for a recipient and
// returns the file path for streaming.
func (s *CardService) PersonalizedAudio(ctx context.Context, cardID, recipientName string) (string, error) {
	view, err := s.GetPersonalizedCard(ctx, cardID, recipientName)
	if err != nil {
		return "", err
	}

	if view.AIVoicePath == "" {
		return "", apperr.NotFound("audio file not found")
	}
	if _, err := os.Stat(view.AIVoicePath); err != nil {
		return "", apperr.NotFound(fmt.Sprintf("audio file not found for card %s", cardID))
	}

	return view.AIVoicePath, nil
}
