// Package comm defines the wire messages the game and socket services
// exchange over NATS and the socket service relays to web clients.
package comm

import "encoding/json"

// Topics the two services meet on.
const (
	TopicSocketService = "socket.service" // client messages relayed to the game service
	TopicGameEvents    = "game.events"    // room broadcasts pushed back to sockets
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "join_room", "game_state"
	Data     json.RawMessage `json:"data"`
	Room     string          `json:"room"`
	SocketId string          `json:"socketid"`
}

// JoinRoom is sent by a client right after the socket opens so the socket
// service can index the connection by room for broadcasts.
type JoinRoom struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// RoomEvent is what the game service publishes after anything that changes
// what a room's clients see. State carries the full snapshot; clients replace,
// never patch.
type RoomEvent struct {
	Type  string          `json:"type"` // "game_started", "player_joined", "answer_submitted", "verdict_changed", "player_kicked"
	Room  string          `json:"room"`
	State json.RawMessage `json:"state"`
}
