package comm

import (
	"encoding/json"
	"time"
)

// WSMessage is the frame exchanged with web clients over the live feed socket.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "card-viewed", "error"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// CardViewedEvent is published on NATS whenever a recipient opens a card.
// OwnerId routes the event to the card owner's live feed sockets.
type CardViewedEvent struct {
	CardId     string    `json:"card_id"`
	OwnerId    string    `json:"owner_id"`
	ViewerName string    `json:"viewer_name"`
	IPAddress  string    `json:"ip_address,omitempty"`
	ViewedAt   time.Time `json:"viewed_at"`
}
