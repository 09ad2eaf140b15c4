package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/wordrush/wordrush-services/internal/comm"
	"github.com/wordrush/wordrush-services/internal/socketsvc/broker"
)

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	roomMap sync.Map // to keep track of socketId with its room
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "join_room":
		s.handleJoinRoom(socketId, message)
	case "get_state":
		s.forwardToGameService(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleJoinRoom indexes the connection by room so room broadcasts reach it,
// then asks the game service for a snapshot so the newcomer is current.
func (s *Ws) handleJoinRoom(socketId string, msg *comm.WSMessage) {
	var payload comm.JoinRoom
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: malformed join_room payload %s", err)
		return
	}
	if payload.Room == "" {
		log.Error("Invalid join_room payload: missing room")
		return
	}

	s.StoreRoom(socketId, payload.Room)
	log.Infof("socket %s joined room %s", socketId, payload.Room)

	snapshot := &comm.WSMessage{Type: "get_state", Room: payload.Room, SocketId: socketId}
	s.forwardToGameService(socketId, snapshot)
}

func (s *Ws) forwardToGameService(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId
	if msg.Room == "" {
		if room, ok := s.GetRoom(socketId); ok {
			msg.Room = room
		}
	}

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(comm.TopicSocketService, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", comm.TopicSocketService, err)
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreRoom(socketId string, roomId string) {
	s.roomMap.Store(socketId, roomId)
}

func (s *Ws) GetRoom(socketId string) (string, bool) {
	room, ok := s.roomMap.Load(socketId)
	if !ok {
		return "", false
	}
	return room.(string), true
}

func (s *Ws) GetRoomSockets(roomId string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == roomId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}
