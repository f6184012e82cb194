package service

import (
	"context"
	"errors"
	"time"

	"github.com/evervow/card-services/internal/cardsvc/apperr"
	"github.com/evervow/card-services/internal/cardsvc/models"
	"github.com/evervow/card-services/internal/cardsvc/store"
	"github.com/evervow/card-services/internal/comm"

	log "github.com/sirupsen/logrus"
)

const (
	recentViewsPerCard      = 10
	recentViewsPerDashboard = 5
)

// AnalyticsService records card views and aggregates them for owner
// dashboards. Views are append-only; summaries are computed on read.
type AnalyticsService struct {
	cardStore CardStore
	viewStore ViewStore
	publisher ViewPublisher
}

func NewAnalyticsService(cardStore CardStore, viewStore ViewStore, publisher ViewPublisher) *AnalyticsService {
	return &AnalyticsService{
		cardStore: cardStore,
		viewStore: viewStore,
		publisher: publisher,
	}
}

// TrackView appends a view record and notifies the card owner's live feed.
// The notification is best effort; the view is recorded either way.
func (s *AnalyticsService) TrackView(ctx context.Context, track models.ViewTrack) error {
	card, err := s.cardStore.GetByID(ctx, track.CardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("card not found")
		}
		return apperr.Internal("failed to look up card", err)
	}

	viewerName := track.ViewerName
	if viewerName == "" {
		viewerName = "Anonymous"
	}

	view := &models.CardView{
		CardID:     card.ID,
		ViewerName: viewerName,
		ViewedAt:   time.Now().UTC(),
		IPAddress:  track.IPAddress,
	}
	if err := s.viewStore.Append(ctx, view); err != nil {
		return apperr.Internal("failed to record view", err)
	}

	if s.publisher != nil {
		evt := comm.CardViewedEvent{
			CardId:     card.ID,
			OwnerId:    card.UserID,
			ViewerName: view.ViewerName,
			IPAddress:  view.IPAddress,
			ViewedAt:   view.ViewedAt,
		}
		if err := s.publisher.PublishCardViewed(evt); err != nil {
			log.Warnf("failed to publish view event for card %s: %v", card.ID, err)
		}
	}

	return nil
}

// CardAnalytics summarizes the view log of one card for its owner.
func (s *AnalyticsService) CardAnalytics(ctx context.Context, cardID, requesterID string) (*models.CardAnalytics, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("card not found")
		}
		return nil, apperr.Internal("failed to look up card", err)
	}
	if card.UserID != requesterID {
		return nil, apperr.Forbidden("not authorized to view analytics for this card")
	}

	views, err := s.viewStore.ListByCard(ctx, cardID)
	if err != nil {
		return nil, apperr.Internal("failed to load card views", err)
	}

	summary := summarize(views, recentViewsPerCard)
	return &models.CardAnalytics{
		CardID:        cardID,
		TotalViews:    summary.total,
		UniqueViewers: summary.unique,
		ViewerNames:   summary.names,
		RecentViews:   summary.recent,
	}, nil
}

// UserAnalytics returns the dashboard summary for every card the user owns.
func (s *AnalyticsService) UserAnalytics(ctx context.Context, userID string) ([]models.UserCardAnalytics, error) {
	cards, err := s.cardStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list user cards", err)
	}

	out := make([]models.UserCardAnalytics, 0, len(cards))
	for _, card := range cards {
		views, err := s.viewStore.ListByCard(ctx, card.ID)
		if err != nil {
			return nil, apperr.Internal("failed to load card views", err)
		}

		summary := summarize(views, recentViewsPerDashboard)
		out = append(out, models.UserCardAnalytics{
			CardID:        card.ID,
			Message:       card.Message,
			CreatedAt:     card.CreatedAt,
			TotalViews:    summary.total,
			UniqueViewers: summary.unique,
			ViewerNames:   summary.names,
			RecentViews:   summary.recent,
		})
	}

	return out, nil
}

type viewSummary struct {
	total  int
	unique int
	names  []string
	recent []*models.CardView
}

// summarize expects views sorted newest first, as the store returns them.
func summarize(views []*models.CardView, recentLimit int) viewSummary {
	names := make([]string, 0, len(views))
	seen := make(map[string]struct{}, len(views))
	for _, v := range views {
		if _, ok := seen[v.ViewerName]; ok {
			continue
		}
		seen[v.ViewerName] = struct{}{}
		names = append(names, v.ViewerName)
	}

	recent := views
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	if recent == nil {
		recent = []*models.CardView{}
	}

	return viewSummary{
		total:  len(views),
		unique: len(seen),
		names:  names,
		recent: recent,
	}
}
