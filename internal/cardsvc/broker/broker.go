// Package broker moves card view events over NATS. The handler side publishes
// when a recipient opens a card; the subscriber side feeds the owner's live
// websocket connections. Running both in one process keeps horizontal scaling
// possible: every instance sees every view event regardless of which instance
// recorded it.
package broker

import (
	"encoding/json"

	"github.com/evervow/card-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const TopicCardViewed = "card.viewed"

// OwnerNotifier receives view events destined for a card owner's sockets.
type OwnerNotifier interface {
	NotifyOwner(evt comm.CardViewedEvent)
}

type Broker struct {
	Conn     *nats.Conn
	Notifier OwnerNotifier
}

func NewBroker(conn *nats.Conn, notifier OwnerNotifier) *Broker {
	return &Broker{
		Conn:     conn,
		Notifier: notifier,
	}
}

// PublishCardViewed pushes a view event onto the bus.
func (b *Broker) PublishCardViewed(evt comm.CardViewedEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Errorf("unable to marshal card viewed event for card %s: %s", evt.CardId, err)
		return err
	}

	msg := &comm.WSMessage{
		Type: "card-viewed",
		Data: data,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return err
	}

	return b.Publish(TopicCardViewed, payload)
}

// Subscribe consumes view events and relays them to the hub.
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "card-viewed":
		evt := comm.CardViewedEvent{}
		if err := json.Unmarshal(message.Data, &evt); err != nil {
			log.Errorf("Error decoding card viewed event: %s", err)
			return
		}
		b.Notifier.NotifyOwner(evt)
	default:
		log.Error("Unknown message")
		return
	}
}
