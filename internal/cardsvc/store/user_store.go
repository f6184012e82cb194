package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/evervow/card-services/internal/cardsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (id, username, password, created_at)
        VALUES ($1, $2, $3, $4)
    `

	_, err := s.db.Exec(ctx, query, user.ID, user.Username, user.Password, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrUsernameTaken
		}
		return fmt.Errorf("could not create user: %w", err)
	}

	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, username, password, created_at
        FROM users
        WHERE id = $1
    `, id)

	return scanUser(row)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, username, password, created_at
        FROM users
        WHERE username = $1
    `, username)

	return scanUser(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}
