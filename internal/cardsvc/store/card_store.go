package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/evervow/card-services/internal/cardsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CardStore struct {
	db *pgxpool.Pool
}

func NewCardStore(db *pgxpool.Pool) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) Create(ctx context.Context, card *models.Card) error {
	query := `
        INSERT INTO cards (id, user_id, message, voice_sample_path, ai_voice_path, qr_code_path, created_at, views)
        VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)
    `

	_, err := s.db.Exec(ctx, query,
		card.ID,
		card.UserID,
		card.Message,
		card.VoiceSamplePath,
		card.AIVoicePath,
		card.QRCodePath,
		card.CreatedAt,
		card.Views,
	)
	if err != nil {
		return fmt.Errorf("could not create card: %w", err)
	}

	return nil
}

func (s *CardStore) GetByID(ctx context.Context, id string) (*models.Card, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, message,
               COALESCE(voice_sample_path, ''),
               COALESCE(ai_voice_path, ''),
               COALESCE(qr_code_path, ''),
               created_at, views
        FROM cards
        WHERE id = $1
    `, id)

	c := &models.Card{}
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Message,
		&c.VoiceSamplePath,
		&c.AIVoicePath,
		&c.QRCodePath,
		&c.CreatedAt,
		&c.Views,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return c, nil
}

func (s *CardStore) ListByUser(ctx context.Context, userID string) ([]*models.Card, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, message,
               COALESCE(voice_sample_path, ''),
               COALESCE(ai_voice_path, ''),
               COALESCE(qr_code_path, ''),
               created_at, views
        FROM cards
        WHERE user_id = $1
        ORDER BY created_at
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		c := &models.Card{}
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Message,
			&c.VoiceSamplePath,
			&c.AIVoicePath,
			&c.QRCodePath,
			&c.CreatedAt,
			&c.Views,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	return cards, nil
}

func (s *CardStore) ListIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id FROM cards WHERE user_id = $1 ORDER BY created_at
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list card ids: %w", err)
	}

	return ids, nil
}

// IncrementViews bumps the view counter atomically in the database, so
// concurrent public views never lose updates.
func (s *CardStore) IncrementViews(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE cards SET views = views + 1 WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *CardStore) SetQRCodePath(ctx context.Context, id, path string) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE cards SET qr_code_path = $2 WHERE id = $1
    `, id, path)
	if err != nil {
		return fmt.Errorf("failed to set qr code path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
