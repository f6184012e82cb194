package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/config"
	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/service"
	"github.com/evervow/card-services/internal/cardsvc/ws"

	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

const tokenTTL = 24 * time.Hour

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	auth      *service.AuthService
	cards     *service.CardService
	voice     *service.VoiceService
	analytics *service.AnalyticsService
	hub       *ws.Hub
	cfg       config.Config
}

func NewHandler(cfg config.Config, auth *service.AuthService, cards *service.CardService,
	voice *service.VoiceService, analytics *service.AnalyticsService, hub *ws.Hub) *Handler {
	return &Handler{
		auth:      auth,
		cards:     cards,
		voice:     voice,
		analytics: analytics,
		hub:       hub,
		cfg:       cfg,
	}
}

type Response struct {
	Message   string      `json:"message"`
	Code      int         `json:"code"`
	Data      interface{} `json:"data"`
	Error     string      `json:"error,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

// writeError maps a taxonomy error to HTTP exactly once, here at the boundary.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.Errorf("request failed: %s", appErr)
	}

	h.CreateResponse(w, Response{
		Code:      appErr.Status,
		Error:     appErr.Message,
		ErrorCode: appErr.Code,
	})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "card service is running at port " + h.cfg.Port,
		Code:    200,
		Data:    nil,
	}
	h.CreateResponse(w, rsp)
}

func (h *Handler) InitAuth() {
	h.tokenAuth = jwtauth.New("HS256", []byte(h.cfg.JWTSecret), nil)
}

// issueToken builds the JWT handed out on register and login.
func (h *Handler) issueToken(user *models.User) (string, error) {
	now := time.Now()
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	})
	return tokenString, err
}

// currentUserID pulls the authenticated user id out of the verified token.
func currentUserID(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", apperr.Unauthorized("invalid or missing token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", apperr.Unauthorized("invalid token claims")
	}

	return userID, nil
}
