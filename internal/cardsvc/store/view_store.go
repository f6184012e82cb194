package store

import (
	"context"
	"fmt"

	"github.com/evervow/card-services/internal/cardsvc/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const viewsCollection = "card_views"

// ViewStore is the append-only card view log, backed by MongoDB.
type ViewStore struct {
	col *mongo.Collection
}

func NewViewStore(db *mongo.Database) *ViewStore {
	return &ViewStore{col: db.Collection(viewsCollection)}
}

// EnsureIndexes creates the card_id lookup index used by the analytics queries.
func (s *ViewStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "card_id", Value: 1}, {Key: "viewed_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create view index: %w", err)
	}

	return nil
}

func (s *ViewStore) Append(ctx context.Context, view *models.CardView) error {
	_, err := s.col.InsertOne(ctx, view)
	if err != nil {
		return fmt.Errorf("could not append card view: %w", err)
	}

	return nil
}

// ListByCard returns all views of a card, most recent first.
func (s *ViewStore) ListByCard(ctx context.Context, cardID string) ([]*models.CardView, error) {
	opts := options.Find().SetSort(bson.D{{Key: "viewed_at", Value: -1}})

	cursor, err := s.col.Find(ctx, bson.M{"card_id": cardID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query card views: %w", err)
	}
	defer cursor.Close(ctx)

	var views []*models.CardView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode card views: %w", err)
	}

	return views, nil
}
