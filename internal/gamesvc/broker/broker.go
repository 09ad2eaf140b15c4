package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/wordrush/wordrush-services/internal/comm"
	"github.com/wordrush/wordrush-services/internal/gamesvc/service"
)

// Broker pushes room broadcasts to the socket service and answers the few
// requests clients send over the socket instead of HTTP.
type Broker struct {
	Conn        *nats.Conn
	GameService *service.GameService
}

func NewBroker(nc *nats.Conn, gameService *service.GameService) *Broker {
	return &Broker{
		Conn:        nc,
		GameService: gameService,
	}
}

// PublishRoomEvent snapshots the room and broadcasts it. Callers fire this
// after any state change; failures are logged, not returned, because the
// HTTP response to the acting player must not depend on the broadcast.
func (b *Broker) PublishRoomEvent(eventType, room string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	state, err := b.GameService.GetState(ctx, room)
	if err != nil {
		log.Errorf("Error [GameService.GetState] for broadcast %s: %s", room, err)
		return
	}

	raw, err := json.Marshal(state)
	if err != nil {
		log.Errorf("Error marshaling room state %s: %s", room, err)
		return
	}

	event := comm.RoomEvent{Type: eventType, Room: room, State: raw}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Error marshaling room event %s: %s", room, err)
		return
	}

	if err := b.Conn.Publish(comm.TopicGameEvents, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", comm.TopicGameEvents, err)
	}
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "get_state":
		// a freshly joined socket asks for the current snapshot
		b.PublishRoomEvent("game_state", msg.Room)
	default:
		log.Warnf("unknown socket message type: %s", msg.Type)
	}
}

func (b *Broker) SubscribeSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}
