// Package ws tracks the live-feed websocket connections of logged-in card
// owners so view events can be pushed to their dashboards.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/evervow/card-services/internal/comm"

	log "github.com/sirupsen/logrus"
)

// Conn is the slice of *websocket.Conn the hub needs; tests plug in fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Hub struct {
	connMap  sync.Map // socketId -> Conn
	ownerMap sync.Map // socketId -> owner user id
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) StoreConnection(socketId, ownerId string, conn Conn) {
	h.connMap.Store(socketId, conn)
	h.ownerMap.Store(socketId, ownerId)
}

func (h *Hub) RemoveConnection(socketId string) {
	if conn, ok := h.connMap.Load(socketId); ok {
		_ = conn.(Conn).Close()
	}
	h.connMap.Delete(socketId)
	h.ownerMap.Delete(socketId)
}

func (h *Hub) GetConnection(socketId string) (Conn, bool) {
	conn, ok := h.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(Conn), true
}

// GetOwnerSockets lists the socket ids of one owner's open connections.
func (h *Hub) GetOwnerSockets(ownerId string) ([]string, bool) {
	var sockets []string
	found := false

	h.ownerMap.Range(func(key, value interface{}) bool {
		if value.(string) == ownerId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

// NotifyOwner pushes a card-viewed event to every socket the owner has open.
// Sockets that fail to write are dropped from the hub.
func (h *Hub) NotifyOwner(evt comm.CardViewedEvent) {
	sockets, ok := h.GetOwnerSockets(evt.OwnerId)
	if !ok {
		return
	}

	data, err := json.Marshal(evt)
	if err != nil {
		log.Errorf("unable to marshal card viewed event for card %s: %s", evt.CardId, err)
		return
	}

	for _, socketId := range sockets {
		conn, ok := h.GetConnection(socketId)
		if !ok {
			continue
		}

		msg := &comm.WSMessage{
			Type:     "card-viewed",
			Data:     data,
			SocketId: socketId,
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("dropping dead socket %s: %s", socketId, err)
			h.RemoveConnection(socketId)
		}
	}
}
