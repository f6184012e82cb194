package models

import "time"

// User owns wedding cards. Password is stored as provided; credentials are
// checked by direct comparison on login.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	Cards     []string  `json:"cards"` // ids of cards owned by the user
}

type UserCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the user shape returned to clients (no password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	Cards     []string  `json:"cards"`
}

func (u *User) Response() UserResponse {
	cards := u.Cards
	if cards == nil {
		cards = []string{}
	}
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		Cards:     cards,
	}
}
