package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/validation"

	"github.com/go-chi/chi"
)

// CloneVoiceHandler accepts a multipart "file" upload and registers a cloned
// voice for the authenticated user.
func (h *Handler) CloneVoiceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(validation.MaxCloneSampleSize); err != nil {
		h.writeError(w, apperr.Invalid("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, apperr.Invalid("voice sample file is required"))
		return
	}
	defer file.Close()

	ext, err := validation.AudioExt(header.Filename)
	if err != nil {
		h.writeError(w, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, validation.MaxCloneSampleSize+1))
	if err != nil {
		h.writeError(w, apperr.Internal("failed to read voice sample", err))
		return
	}
	if err := validation.SampleSize(int64(len(data)), validation.MaxCloneSampleSize); err != nil {
		h.writeError(w, err)
		return
	}

	samplePath, err := h.voice.SaveUserSample(userID, ext, data)
	if err != nil {
		h.writeError(w, err)
		return
	}

	voiceID, err := h.voice.CloneVoice(r.Context(), userID, filepath.FromSlash(samplePath))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "voice cloned",
		Code:    http.StatusCreated,
		Data:    map[string]string{"voice_id": voiceID},
	})
}

// SynthesizeHandler renders text with the user's cloned voice and returns the
// path of the generated clip.
func (h *Handler) SynthesizeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		Text          string `json:"text"`
		RecipientName string `json:"recipient_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Invalid("invalid request body"))
		return
	}

	text := validation.Sanitize(req.Text)
	if err := validation.Message(text); err != nil {
		h.writeError(w, err)
		return
	}

	path, err := h.voice.SynthesizeMessage(r.Context(), userID, text, validation.Sanitize(req.RecipientName))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "audio generated",
		Code:    http.StatusCreated,
		Data:    map[string]string{"audio_path": path},
	})
}

func (h *Handler) GetVoiceModelHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	model, err := h.voice.GetVoiceModel(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if model == nil {
		h.writeError(w, apperr.NotFound("no voice model found"))
		return
	}

	h.CreateResponse(w, Response{
		Message: "voice model retrieved",
		Code:    http.StatusOK,
		Data:    model,
	})
}

func (h *Handler) DeleteVoiceModelHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	deleted, err := h.voice.DeleteVoiceModel(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !deleted {
		h.writeError(w, apperr.NotFound("no voice model found"))
		return
	}

	h.CreateResponse(w, Response{
		Message: "voice model deleted",
		Code:    http.StatusOK,
	})
}

// GetAudioFileHandler serves generated clips by filename. The name is pinned
// to its base so the handler cannot be walked out of the audio directory.
func (h *Handler) GetAudioFileHandler(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(chi.URLParam(r, "filename"))
	if filename == "." || filename == "/" || !strings.HasSuffix(filename, ".mp3") {
		h.writeError(w, apperr.Invalid("invalid audio filename"))
		return
	}

	path := filepath.Join(h.voice.AudioDir(), filename)

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}
