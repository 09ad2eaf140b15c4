package service

import (
	"context"
	"strings"
	"time"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// GameService covers the session lifecycle outside of round play: creating
// and joining rooms, the state snapshot, the open-game list and the kick.
type GameService struct {
	games       GameStore
	players     PlayerStore
	assignments AssignmentStore
	submissions SubmissionStore
	now         func() time.Time
}

func NewGameService(games GameStore, players PlayerStore, assignments AssignmentStore, submissions SubmissionStore) *GameService {
	return &GameService{
		games:       games,
		players:     players,
		assignments: assignments,
		submissions: submissions,
		now:         time.Now,
	}
}

type CreateGameRequest struct {
	Room        string          `json:"room"`
	GameType    models.GameType `json:"game_type"`
	TimeLimit   int             `json:"time_limit"`
	Creator     string          `json:"creator"`
	PlayerNames []string        `json:"player_names"` // extra local players, optional
}

// CreateGame opens a new room. The creator always joins; extra names cover
// the local pass-the-device mode where the whole roster is known up front.
func (s *GameService) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	req.Room = strings.TrimSpace(req.Room)
	if req.Room == "" {
		return nil, apperr.Validation("room name must not be empty")
	}
	if !req.GameType.Valid() {
		return nil, apperr.Validation("unknown game type %q", req.GameType)
	}
	if req.TimeLimit <= 0 {
		return nil, apperr.Validation("time limit must be positive")
	}
	if strings.TrimSpace(req.Creator) == "" {
		return nil, apperr.Validation("creator username must not be empty")
	}

	usernames := []string{req.Creator}
	for _, name := range req.PlayerNames {
		name = strings.TrimSpace(name)
		if name == "" || name == req.Creator {
			continue
		}
		usernames = append(usernames, name)
	}

	game := &models.Game{
		Room:      req.Room,
		GameType:  req.GameType,
		TimeLimit: req.TimeLimit,
	}
	return s.games.CreateWithPlayers(ctx, game, usernames)
}

// Join adds the caller to a room. Joining a room you are already in is a
// rejoin and succeeds without a new roster row, so a dropped client can
// reconnect mid-session. New joins into a started turn-based game are
// rejected because the rotation order is fixed at start.
func (s *GameService) Join(ctx context.Context, room, username string) (*models.Game, *models.Player, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, apperr.Validation("username must not be empty")
	}

	game, err := s.games.GetByRoom(ctx, room)
	if err != nil {
		return nil, nil, err
	}
	if game == nil {
		return nil, nil, apperr.NotFound("game %s not found", room)
	}

	existing, err := s.players.GetByGameAndName(ctx, game.ID, username)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return game, existing, nil
	}

	if game.Started && game.GameType.Variant().TurnBased {
		return nil, nil, apperr.Conflict("game %s has already started", room)
	}

	player, err := s.players.Add(ctx, game.ID, username, false)
	if err != nil {
		return nil, nil, err
	}
	return game, player, nil
}

// GameState is the full room snapshot clients poll or receive over the
// socket. Ended and TimeLeft are derived from the stored start timestamp at
// read time; nothing writes an ended flag.
type GameState struct {
	Room          string                    `json:"room"`
	GameType      models.GameType           `json:"game_type"`
	Started       bool                      `json:"started"`
	Ended         bool                      `json:"ended"`
	TimeLimit     int                       `json:"time_limit"`
	TimeLeft      int                       `json:"time_left"`
	CurrentTurn   int                       `json:"current_turn"`
	CurrentPlayer string                    `json:"current_player,omitempty"`
	Players       []PlayerState             `json:"players"`
	Questions     []*models.RoundAssignment `json:"questions"`
}

func (s *GameService) GetState(ctx context.Context, room string) (*GameState, error) {
	game, err := s.games.GetByRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, apperr.NotFound("game %s not found", room)
	}

	roster, err := s.players.ListByGame(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	var assignments []*models.RoundAssignment
	if game.Started {
		assignments, err = s.assignments.ListByGame(ctx, game.ID)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	state := &GameState{
		Room:        game.Room,
		GameType:    game.GameType,
		Started:     game.Started,
		Ended:       game.Ended(now),
		TimeLimit:   game.TimeLimit,
		TimeLeft:    game.TimeLeft(now),
		CurrentTurn: game.CurrentTurn,
		Players:     rosterStates(roster),
		Questions:   assignments,
	}
	if game.Started && game.GameType.Variant().TurnBased && len(roster) > 0 {
		state.CurrentPlayer = roster[game.CurrentTurn%len(roster)].Username
	}
	return state, nil
}

// OpenGame is one lobby entry in the joinable-games list.
type OpenGame struct {
	Room     string          `json:"room"`
	GameType models.GameType `json:"game_type"`
	Players  []string        `json:"players"`
}

func (s *GameService) ListOpenGames(ctx context.Context) ([]*OpenGame, error) {
	games, err := s.games.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	open := make([]*OpenGame, 0, len(games))
	for _, g := range games {
		roster, err := s.players.ListByGame(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(roster))
		for _, p := range roster {
			names = append(names, p.Username)
		}
		open = append(open, &OpenGame{Room: g.Room, GameType: g.GameType, Players: names})
	}
	return open, nil
}

// AnswerHistory returns every submission in the room with its merged verdict,
// for review screens and for deciding what to put to a vote.
func (s *GameService) AnswerHistory(ctx context.Context, room string) ([]*models.AnswerRecord, error) {
	game, err := s.games.GetByRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, apperr.NotFound("game %s not found", room)
	}
	return s.submissions.HistoryByGame(ctx, game.ID)
}

// Kick removes a player from a turn-based room. Only the creator may kick,
// and the creator cannot kick themselves out of their own game.
func (s *GameService) Kick(ctx context.Context, room, requester, target string) error {
	game, err := s.games.GetByRoom(ctx, room)
	if err != nil {
		return err
	}
	if game == nil {
		return apperr.NotFound("game %s not found", room)
	}
	if !game.GameType.Variant().TurnBased {
		return apperr.Validation("players cannot be kicked from this game type")
	}

	creator, err := s.players.GetCreator(ctx, game.ID)
	if err != nil {
		return err
	}
	if creator == nil || creator.Username != requester {
		return apperr.NotAuthorized("only the game creator can kick players")
	}
	if target == requester {
		return apperr.Validation("the creator cannot kick themselves")
	}

	return s.players.Remove(ctx, game.ID, target)
}
