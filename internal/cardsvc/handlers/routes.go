package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Get("/health", h.HealthHandler)

	// QR PNGs and generated clips are also reachable by their stored paths.
	fileServer := http.StripPrefix("/data/", http.FileServer(http.Dir(h.cfg.DataDir)))
	r.Get("/data/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})

	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		r.Post("/auth/register", h.RegisterHandler)
		r.Post("/auth/login", h.LoginHandler)
		r.Post("/auth/logout", h.LogoutHandler)

		// recipient-facing card routes, reachable straight from a QR scan
		r.Get("/cards/{cardID}", h.GetCardHandler)
		r.Get("/cards/{cardID}/qr-code", h.GetQRCodeHandler)
		r.Get("/cards/{cardID}/audio", h.GetCardAudioHandler)
		r.Put("/cards/{cardID}/views", h.IncrementViewsHandler)

		r.Get("/voice/audio/{filename}", h.GetAudioFileHandler)

		r.Post("/analytics/track", h.TrackViewHandler)

		// live view feed; the token rides the query string because browsers
		// cannot set headers on websocket upgrades
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(h.tokenAuth, jwtauth.TokenFromQuery, jwtauth.TokenFromHeader))
			r.Use(jwtauth.Authenticator)

			r.Get("/ws/views", h.ViewFeedHandler)
		})

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/auth/verify", h.VerifyHandler)

			r.Post("/cards", h.CreateCardHandler)
			r.Get("/cards/my-cards", h.MyCardsHandler)
			r.Get("/cards/user/{userID}", h.UserCardsHandler)

			r.Post("/voice/clone", h.CloneVoiceHandler)
			r.Post("/voice/synthesize", h.SynthesizeHandler)
			r.Get("/voice/model", h.GetVoiceModelHandler)
			r.Delete("/voice/model", h.DeleteVoiceModelHandler)

			r.Get("/analytics/card/{cardID}", h.CardAnalyticsHandler)
			r.Get("/analytics/user", h.UserAnalyticsHandler)
		})
	})
}
