package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ViewFeedHandler upgrades the card owner's dashboard connection and streams
// card-viewed events to it. The hub keys connections by the authenticated
// user so events reach every tab the owner has open.
func (h *Handler) ViewFeedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	socketId := uuid.New().String()
	h.hub.StoreConnection(socketId, userID, conn)

	log.Infof("view feed connected: user=%s socket=%s", userID, socketId)

	go h.readLoop(conn, socketId)
}

// readLoop drains client frames so pings and close frames are processed; the
// feed itself is one-directional.
func (h *Handler) readLoop(conn *websocket.Conn, socketId string) {
	defer func() {
		log.Infof("view feed disconnected: socket=%s", socketId)
		h.hub.RemoveConnection(socketId)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close error for socket %s: %v", socketId, err)
			}
			break
		}
	}
}
