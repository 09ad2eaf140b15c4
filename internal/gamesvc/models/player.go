package models

import "time"

// Player is one participant in a game. The username does not have to map to
// a registered user; local games pass display names straight through.
type Player struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	Username  string    `json:"username"`
	IsCreator bool      `json:"is_creator"`
	Score     int       `json:"score"`
	JoinedAt  time.Time `json:"joined_at"`
}
