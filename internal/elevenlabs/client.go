// Package elevenlabs is a minimal client for the ElevenLabs voice cloning
// and text-to-speech API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.elevenlabs.io/v1"

// Provider errors. Callers branch on these to decide how to answer clients.
var (
	ErrNotConfigured = errors.New("voice generation service is not configured")
	ErrAuth          = errors.New("voice service authentication failed")
	ErrBusy          = errors.New("voice service is busy, try again in a few minutes")
	ErrInvalidSample = errors.New("voice sample validation failed")
)

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// New builds a client. An empty apiKey yields a client whose calls fail with
// ErrNotConfigured, so the service can start without credentials.
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type cloneResponse struct {
	VoiceID string `json:"voice_id"`
}

type apiErrorDetail struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// CloneVoice registers a new voice from a sample recording and returns the
// provider voice id.
func (c *Client) CloneVoice(ctx context.Context, name, description string, sample io.Reader) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("files", "sample.wav")
	if err != nil {
		return "", fmt.Errorf("failed to build clone request: %w", err)
	}
	if _, err := io.Copy(part, sample); err != nil {
		return "", fmt.Errorf("failed to read voice sample: %w", err)
	}
	if err := mw.WriteField("name", name); err != nil {
		return "", fmt.Errorf("failed to build clone request: %w", err)
	}
	if err := mw.WriteField("description", description); err != nil {
		return "", fmt.Errorf("failed to build clone request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build clone request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voices/add", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("voice cloning request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out cloneResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("failed to decode clone response: %w", err)
		}
		if out.VoiceID == "" {
			return "", errors.New("no voice id returned from provider")
		}
		return out.VoiceID, nil
	case http.StatusUnauthorized:
		return "", ErrAuth
	case http.StatusTooManyRequests:
		return "", ErrBusy
	case http.StatusBadRequest:
		var detail apiErrorDetail
		if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Detail.Message != "" {
			return "", fmt.Errorf("%w: %s", ErrInvalidSample, detail.Detail.Message)
		}
		return "", ErrInvalidSample
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("voice cloning service error: %d - %s", resp.StatusCode, payload)
	}
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize renders text with a previously cloned voice and returns MP3 bytes.
func (c *Client) Synthesize(ctx context.Context, voiceID, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(synthesizeRequest{
		Text: text,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech/"+voiceID, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		audio, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
		}
		return audio, nil
	case http.StatusUnauthorized:
		return nil, ErrAuth
	case http.StatusTooManyRequests:
		return nil, ErrBusy
	default:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis service error: %d - %s", resp.StatusCode, payload)
	}
}

// DeleteVoice removes a cloned voice from the provider.
func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/voices/"+voiceID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("voice delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to delete voice: %d", resp.StatusCode)
	}

	return nil
}
