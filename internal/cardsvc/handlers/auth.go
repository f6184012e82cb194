package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/validation"
)

type authPayload struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var creds models.UserCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, apperr.Invalid("invalid request body"))
		return
	}

	creds.Username = validation.Sanitize(creds.Username)
	if err := validation.Username(creds.Username); err != nil {
		h.writeError(w, err)
		return
	}
	if err := validation.Password(creds.Password); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.writeError(w, apperr.Internal("failed to issue token", err))
		return
	}

	h.CreateResponse(w, Response{
		Message: "user registered",
		Code:    http.StatusCreated,
		Data:    authPayload{Token: token, User: user.Response()},
	})
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds models.UserCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(w, apperr.Invalid("invalid request body"))
		return
	}

	user, err := h.auth.Authenticate(r.Context(), validation.Sanitize(creds.Username), creds.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.writeError(w, apperr.Internal("failed to issue token", err))
		return
	}

	h.CreateResponse(w, Response{
		Message: "login successful",
		Code:    http.StatusOK,
		Data:    authPayload{Token: token, User: user.Response()},
	})
}

// LogoutHandler exists for client symmetry; tokens are stateless so the
// client simply discards its copy.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "logged out",
		Code:    http.StatusOK,
	})
}

func (h *Handler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "token valid",
		Code:    http.StatusOK,
		Data:    user.Response(),
	})
}
