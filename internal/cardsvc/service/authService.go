package service

import (
	"context"
	"errors"
	"time"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/store"
)

// AuthService handles account registration and credential checks.
type AuthService struct {
	userStore UserStore
	cardStore CardStore
}

func NewAuthService(userStore UserStore, cardStore CardStore) *AuthService {
	return &AuthService{
		userStore: userStore,
		cardStore: cardStore,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	user := &models.User{
		ID:        newID("user"),
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().UTC(),
		Cards:     []string{},
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, apperr.Conflict("username already exists")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	return user, nil
}

// Authenticate matches credentials by direct comparison. A wrong username
// and a wrong password answer identically so the endpoint does not reveal
// which accounts exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid username or password")
		}
		return nil, apperr.Internal("failed to look up user", err)
	}

	if user.Password != password {
		return nil, apperr.Unauthorized("invalid username or password")
	}

	return s.withCards(ctx, user)
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, apperr.Internal("failed to look up user", err)
	}

	return s.withCards(ctx, user)
}

// withCards fills in the ids of cards the user owns; the linkage lives on the
// cards table.
func (s *AuthService) withCards(ctx context.Context, user *models.User) (*models.User, error) {
	ids, err := s.cardStore.ListIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list user cards", err)
	}
	if ids == nil {
		ids = []string{}
	}
	user.Cards = ids

	return user, nil
}
