package models

import "time"

// CardView is one entry of the append-only view log.
type CardView struct {
	CardID     string    `json:"card_id" bson:"card_id"`
	ViewerName string    `json:"viewer_name" bson:"viewer_name"`
	ViewedAt   time.Time `json:"viewed_at" bson:"viewed_at"`
	IPAddress  string    `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
}

// ViewTrack is the request body for recording a view.
type ViewTrack struct {
	CardID     string `json:"card_id"`
	ViewerName string `json:"viewer_name"`
	IPAddress  string `json:"ip_address,omitempty"`
}

// CardAnalytics summarizes the view log for one card.
type CardAnalytics struct {
	CardID        string      `json:"card_id"`
	TotalViews    int         `json:"total_views"`
	UniqueViewers int         `json:"unique_viewers"`
	ViewerNames   []string    `json:"viewer_names"`
	RecentViews   []*CardView `json:"recent_views"`
}

// UserCardAnalytics is the per-card summary line of a user's dashboard.
type UserCardAnalytics struct {
	CardID        string      `json:"card_id"`
	Message       string      `json:"message"`
	CreatedAt     time.Time   `json:"created_at"`
	TotalViews    int         `json:"total_views"`
	UniqueViewers int         `json:"unique_viewers"`
	ViewerNames   []string    `json:"viewer_names"`
	RecentViews   []*CardView `json:"recent_views"`
}
