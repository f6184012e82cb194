package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/evervow/card-services/internal/cardsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VoiceModelStore struct {
	db *pgxpool.Pool
}

func NewVoiceModelStore(db *pgxpool.Pool) *VoiceModelStore {
	return &VoiceModelStore{db: db}
}

// Upsert stores the cloned voice for a user, replacing any previous model.
// Re-cloning overwrites, matching the one-model-per-user registry.
func (s *VoiceModelStore) Upsert(ctx context.Context, m *models.VoiceModel) error {
	query := `
        INSERT INTO voice_models (user_id, voice_id, voice_name, provider, sample_path, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE
        SET voice_id = EXCLUDED.voice_id,
            voice_name = EXCLUDED.voice_name,
            provider = EXCLUDED.provider,
            sample_path = EXCLUDED.sample_path,
            created_at = EXCLUDED.created_at
    `

	_, err := s.db.Exec(ctx, query, m.UserID, m.VoiceID, m.VoiceName, m.Provider, m.SamplePath, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("could not store voice model: %w", err)
	}

	return nil
}

func (s *VoiceModelStore) GetByUserID(ctx context.Context, userID string) (*models.VoiceModel, error) {
	row := s.db.QueryRow(ctx, `
        SELECT user_id, voice_id, voice_name, provider, sample_path, created_at
        FROM voice_models
        WHERE user_id = $1
    `, userID)

	m := &models.VoiceModel{}
	err := row.Scan(
		&m.UserID,
		&m.VoiceID,
		&m.VoiceName,
		&m.Provider,
		&m.SamplePath,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get voice model: %w", err)
	}

	return m, nil
}

func (s *VoiceModelStore) DeleteByUserID(ctx context.Context, userID string) error {
	tag, err := s.db.Exec(ctx, `
        DELETE FROM voice_models WHERE user_id = $1
    `, userID)
	if err != nil {
		return fmt.Errorf("failed to delete voice model: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
