package handlers

import (
	"io"
	"net/http"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/service"
	"github.com/evervow/card-services/internal/cardsvc/validation"

	"github.com/go-chi/chi"
)

// CreateCardHandler accepts multipart form data: a "message" field and an
// optional "voice_sample" file used to clone the sender's voice.
func (h *Handler) CreateCardHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(validation.MaxCardSampleSize); err != nil {
		h.writeError(w, apperr.Invalid("invalid multipart form"))
		return
	}

	message := validation.Sanitize(r.FormValue("message"))
	if err := validation.Message(message); err != nil {
		h.writeError(w, err)
		return
	}

	var sample *service.VoiceSample
	file, header, err := r.FormFile("voice_sample")
	if err == nil {
		defer file.Close()

		ext, err := validation.AudioExt(header.Filename)
		if err != nil {
			h.writeError(w, err)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, validation.MaxCardSampleSize+1))
		if err != nil {
			h.writeError(w, apperr.Internal("failed to read voice sample", err))
			return
		}
		if err := validation.SampleSize(int64(len(data)), validation.MaxCardSampleSize); err != nil {
			h.writeError(w, err)
			return
		}

		sample = &service.VoiceSample{Ext: ext, Data: data}
	} else if err != http.ErrMissingFile {
		h.writeError(w, apperr.Invalid("invalid voice sample upload"))
		return
	}

	card, err := h.cards.CreateCard(r.Context(), userID, message, sample)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "card created",
		Code:    http.StatusCreated,
		Data:    card.Response(),
	})
}

// GetCardHandler serves the public card view. A recipient_name query
// parameter personalizes the audio when the owner has a cloned voice.
func (h *Handler) GetCardHandler(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	recipientName := validation.Sanitize(r.URL.Query().Get("recipient_name"))

	view, err := h.cards.GetPersonalizedCard(r.Context(), cardID, recipientName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "card retrieved",
		Code:    http.StatusOK,
		Data:    view,
	})
}

func (h *Handler) MyCardsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cards, err := h.cards.GetUserCards(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "cards retrieved",
		Code:    http.StatusOK,
		Data:    cards,
	})
}

// UserCardsHandler lists a user's cards by explicit id. Only the user
// themselves may read their list.
func (h *Handler) UserCardsHandler(w http.ResponseWriter, r *http.Request) {
	requesterID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID != requesterID {
		h.writeError(w, apperr.Forbidden("access denied"))
		return
	}

	cards, err := h.cards.GetUserCards(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "cards retrieved",
		Code:    http.StatusOK,
		Data:    cards,
	})
}

// GetQRCodeHandler streams the card's QR PNG, regenerating it if the file
// disappeared from disk.
func (h *Handler) GetQRCodeHandler(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	path, err := h.cards.EnsureQRCode(r.Context(), cardID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// GetCardAudioHandler streams the personalized clip for a recipient.
func (h *Handler) GetCardAudioHandler(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	recipientName := validation.Sanitize(r.URL.Query().Get("recipient_name"))

	path, err := h.cards.PersonalizedAudio(r.Context(), cardID, recipientName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}

func (h *Handler) IncrementViewsHandler(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	if err := h.cards.IncrementViews(r.Context(), cardID); err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "view recorded",
		Code:    http.StatusOK,
	})
}
