package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/wordrush/wordrush-services/internal/comm"
)

// Broker relays between NATS and the websocket layer. The connection lookups
// are injected as functions to keep the import direction one way.
type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetRoomSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool), fncGetRoomSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetRoomSockets: fncGetRoomSockets,
	}
}

// Subscribe consumes room events from the game service.
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to the game service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives room events from the game service and fans them
// out to every socket in the room.
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	event := &comm.RoomEvent{}
	err := json.Unmarshal(msgNats.Data, &event)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}
	if event.Room == "" {
		log.Error("room event without a room")
		return
	}

	b.broadcast(event)
}

func (b *Broker) broadcast(event *comm.RoomEvent) {
	sockets, ok := b.GetRoomSockets(event.Room)
	if !ok {
		log.Debugf("no sockets in room %s for event %s", event.Room, event.Type)
		return
	}

	for _, socketId := range sockets {
		conn, ok := b.GetConnection(socketId)
		if !ok {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			log.Errorf("Error writing to socket %s: %s", socketId, err)
		}
	}
}
