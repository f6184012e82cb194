package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/store"
	"github.com/evervow/card-services/internal/elevenlabs"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const voiceProviderName = "elevenlabs"

// VoiceService owns the voice cloning and synthesis workflow: saving samples,
// registering cloned voices with the provider, and rendering personalized
// audio clips.
type VoiceService struct {
	provider   VoiceProvider
	modelStore VoiceModelStore
	samplesDir string
	audioDir   string
}

func NewVoiceService(provider VoiceProvider, modelStore VoiceModelStore, samplesDir, audioDir string) *VoiceService {
	return &VoiceService{
		provider:   provider,
		modelStore: modelStore,
		samplesDir: samplesDir,
		audioDir:   audioDir,
	}
}

// SaveCardSample stores the sample uploaded during card creation.
func (s *VoiceService) SaveCardSample(cardID, ext string, data []byte) (string, error) {
	filename := fmt.Sprintf("%s_voice_sample.%s", cardID, ext)
	return s.saveSample(filename, data)
}

// SaveUserSample stores a sample uploaded through the standalone clone endpoint.
func (s *VoiceService) SaveUserSample(userID, ext string, data []byte) (string, error) {
	filename := fmt.Sprintf("%s_%s.%s", userID, uuid.New().String(), ext)
	return s.saveSample(filename, data)
}

func (s *VoiceService) saveSample(filename string, data []byte) (string, error) {
	path := filepath.Join(s.samplesDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperr.Internal("failed to save voice sample", err)
	}

	log.Infof("voice sample saved: %s", path)
	return filepath.ToSlash(path), nil
}

// CloneVoice registers the sample with the provider and records the voice
// model for the user. Re-cloning replaces the previous model.
func (s *VoiceService) CloneVoice(ctx context.Context, userID, samplePath string) (string, error) {
	data, err := os.ReadFile(samplePath)
	if err != nil {
		return "", apperr.Internal("voice sample file not found", err)
	}
	if len(data) == 0 {
		return "", apperr.Invalid("voice sample file is empty")
	}

	voiceName := "wedding_voice_" + userID
	description := "Cloned voice for user " + userID

	voiceID, err := s.provider.CloneVoice(ctx, voiceName, description, bytes.NewReader(data))
	if err != nil {
		return "", mapProviderError(err)
	}

	model := &models.VoiceModel{
		UserID:     userID,
		VoiceID:    voiceID,
		VoiceName:  voiceName,
		Provider:   voiceProviderName,
		SamplePath: samplePath,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.modelStore.Upsert(ctx, model); err != nil {
		return "", apperr.Internal("failed to store voice model", err)
	}

	log.Infof("voice cloned for user %s: %s", userID, voiceID)
	return voiceID, nil
}

// SynthesizeMessage renders the personalized message with the user's cloned
// voice and writes the MP3 under the generated audio directory.
func (s *VoiceService) SynthesizeMessage(ctx context.Context, userID, message, recipientName string) (string, error) {
	model, err := s.GetVoiceModel(ctx, userID)
	if err != nil {
		return "", err
	}
	if model == nil {
		return "", apperr.Invalid("no voice model found; please clone your voice first")
	}

	personalized := personalize(message, recipientName)

	audio, err := s.provider.Synthesize(ctx, model.VoiceID, personalized)
	if err != nil {
		return "", mapProviderError(err)
	}

	filename := fmt.Sprintf("%s_%s_%s.mp3", userID, safeName(recipientName), newHex8())
	path := filepath.Join(s.audioDir, filename)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", apperr.Internal("failed to save synthesized audio", err)
	}

	log.Infof("audio synthesized for user %s: %s", userID, path)
	return filepath.ToSlash(path), nil
}

// GetVoiceModel returns the user's voice model, or nil when none exists.
func (s *VoiceService) GetVoiceModel(ctx context.Context, userID string) (*models.VoiceModel, error) {
	model, err := s.modelStore.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal("failed to load voice model", err)
	}
	return model, nil
}

// DeleteVoiceModel removes the user's voice, remote first (best effort), then
// locally. Returns false when there was nothing to delete.
func (s *VoiceService) DeleteVoiceModel(ctx context.Context, userID string) (bool, error) {
	model, err := s.GetVoiceModel(ctx, userID)
	if err != nil {
		return false, err
	}
	if model == nil {
		return false, nil
	}

	if s.provider.Configured() && model.Provider == voiceProviderName {
		if err := s.provider.DeleteVoice(ctx, model.VoiceID); err != nil {
			log.Warnf("failed to delete voice %s from provider: %v", model.VoiceID, err)
		}
	}

	if err := s.modelStore.DeleteByUserID(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, apperr.Internal("failed to delete voice model", err)
	}

	log.Infof("voice model deleted for user %s", userID)
	return true, nil
}

// AudioDir exposes where generated clips live, for the file serving handler.
func (s *VoiceService) AudioDir() string {
	return s.audioDir
}

// personalize substitutes the recipient's name for the supported placeholders.
// Upper-case placeholders get the upper-cased name.
func personalize(message, recipientName string) string {
	out := strings.ReplaceAll(message, "{name}", recipientName)
	out = strings.ReplaceAll(out, "{NAME}", strings.ToUpper(recipientName))
	out = strings.ReplaceAll(out, "[name]", recipientName)
	out = strings.ReplaceAll(out, "[NAME]", strings.ToUpper(recipientName))
	return out
}

// safeName keeps recipient names usable as a filename fragment.
func safeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")
	return replacer.Replace(name)
}

func newHex8() string {
	return newID("x")[2:] // strip the "x_" prefix, keep the 8 hex chars
}

// mapProviderError translates provider failures into the API error taxonomy.
func mapProviderError(err error) error {
	switch {
	case errors.Is(err, elevenlabs.ErrInvalidSample):
		return apperr.Invalid(err.Error())
	case errors.Is(err, elevenlabs.ErrNotConfigured):
		return apperr.External("voice generation service is not configured; please contact administrator", err)
	case errors.Is(err, elevenlabs.ErrAuth), errors.Is(err, elevenlabs.ErrBusy):
		return apperr.External(err.Error(), err)
	default:
		return apperr.External("voice service error", err)
	}
}
