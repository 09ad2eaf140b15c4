package models

import (
	"database/sql"
	"time"
)

type GameType string

const (
	GameTypeWordChain   GameType = "word_chain"
	GameTypeWordBlitz   GameType = "word_blitz"
	GameTypeLetterMatch GameType = "letter_match"
)

// PointsPerCorrect is the fixed award in the point-scoring variants.
const PointsPerCorrect = 10

// Variant captures the rule differences between the three games.
type Variant struct {
	TurnBased         bool // forced turn rotation on time expiry, kick allowed
	AntiRepeat        bool // reject answer text already used in the session
	WordLengthScoring bool // score by word length instead of fixed points
}

func (t GameType) Valid() bool {
	switch t {
	case GameTypeWordChain, GameTypeWordBlitz, GameTypeLetterMatch:
		return true
	}
	return false
}

func (t GameType) Variant() Variant {
	switch t {
	case GameTypeWordChain:
		return Variant{TurnBased: true, AntiRepeat: true, WordLengthScoring: true}
	default:
		return Variant{}
	}
}

// Game represents the games table, one row per room.
type Game struct {
	ID          int64        `json:"id"`
	Room        string       `json:"room"`
	GameType    GameType     `json:"game_type"`
	TimeLimit   int          `json:"time_limit"` // seconds per round
	Started     bool         `json:"started"`
	StartTime   sql.NullTime `json:"start_time"`
	CurrentTurn int          `json:"current_turn"` // turn-based variant only
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Elapsed returns the time since the session started, zero if not started.
func (g *Game) Elapsed(now time.Time) time.Duration {
	if !g.Started || !g.StartTime.Valid {
		return 0
	}
	return now.Sub(g.StartTime.Time)
}

// Ended is derived, never stored: a round is over once its time limit is up.
// The comparison is strict, a submission landing exactly at the limit still
// counts.
func (g *Game) Ended(now time.Time) bool {
	if !g.Started || !g.StartTime.Valid {
		return false
	}
	return g.Elapsed(now) > time.Duration(g.TimeLimit)*time.Second
}

// TimeLeft returns the remaining whole seconds, floored at zero.
func (g *Game) TimeLeft(now time.Time) int {
	if !g.Started || !g.StartTime.Valid {
		return 0
	}
	remaining := g.TimeLimit - int(g.Elapsed(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
