package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/validation"

	"github.com/go-chi/chi"
)

// TrackViewHandler records a card view. Public: recipients hit it straight
// from the viewing page. The viewer IP is taken from the connection, not the
// body, so clients cannot spoof it.
func (h *Handler) TrackViewHandler(w http.ResponseWriter, r *http.Request) {
	var track models.ViewTrack
	if err := json.NewDecoder(r.Body).Decode(&track); err != nil {
		h.writeError(w, apperr.Invalid("invalid request body"))
		return
	}

	if track.CardID == "" {
		h.writeError(w, apperr.Invalid("card_id is required"))
		return
	}
	track.ViewerName = validation.Sanitize(track.ViewerName)
	track.IPAddress = r.RemoteAddr

	if err := h.analytics.TrackView(r.Context(), track); err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "view tracked",
		Code:    http.StatusCreated,
	})
}

func (h *Handler) CardAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	cardID := chi.URLParam(r, "cardID")

	analytics, err := h.analytics.CardAnalytics(r.Context(), cardID, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "analytics retrieved",
		Code:    http.StatusOK,
		Data:    analytics,
	})
}

func (h *Handler) UserAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	analytics, err := h.analytics.UserAnalytics(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "analytics retrieved",
		Code:    http.StatusOK,
		Data:    analytics,
	})
}
