package service

import (
	"context"
	"math/rand"
	"strings"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// RoundService turns a lobby into a running session: it resolves the session
// letter, draws prompts from the question bank and installs them atomically.
// Session starts run on concurrent request goroutines, so random draws stay
// on the locked top-level math/rand functions.
type RoundService struct {
	games       GameStore
	players     PlayerStore
	assignments AssignmentStore
	bank        QuestionBank
}

func NewRoundService(games GameStore, players PlayerStore, assignments AssignmentStore, bank QuestionBank) *RoundService {
	return &RoundService{games: games, players: players, assignments: assignments, bank: bank}
}

type StartResult struct {
	Room      string                    `json:"room"`
	Letter    string                    `json:"letter"`
	TimeLimit int                       `json:"time_limit"`
	Questions []*models.RoundAssignment `json:"questions"`
	Players   []PlayerState             `json:"players"`
}

// StartSession moves the game into the started state. Only the creator may
// start; a second start attempt is rejected instead of reshuffling prompts.
// When letter is empty or the keyword "random" one is drawn at random.
func (s *RoundService) StartSession(ctx context.Context, room, username string, roundCount int, letter string) (*StartResult, error) {
	game, err := s.games.GetByRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, apperr.NotFound("game %s not found", room)
	}

	creator, err := s.players.GetCreator(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	if creator == nil || creator.Username != username {
		return nil, apperr.NotAuthorized("only the game creator can start the game")
	}

	if game.Started {
		return nil, apperr.Conflict("game %s has already started", room)
	}

	letter, err = s.resolveLetter(letter)
	if err != nil {
		return nil, err
	}

	questionIDs, err := s.drawQuestions(ctx, game.GameType, roundCount)
	if err != nil {
		return nil, err
	}

	if err := s.games.StartWithAssignments(ctx, game.ID, letter, questionIDs); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByGame(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	roster, err := s.players.ListByGame(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	return &StartResult{
		Room:      room,
		Letter:    letter,
		TimeLimit: game.TimeLimit,
		Questions: assignments,
		Players:   rosterStates(roster),
	}, nil
}

func (s *RoundService) resolveLetter(letter string) (string, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" || letter == "RANDOM" {
		return string(rune('A' + rand.Intn(26))), nil
	}
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return "", apperr.Validation("letter must be a single character A-Z")
	}
	return letter, nil
}

// drawQuestions samples roundCount prompts without replacement. The blitz
// variant plays one themed set end to end; the other variants draw from the
// whole bank. roundCount <= 0 or beyond the pool means every candidate.
func (s *RoundService) drawQuestions(ctx context.Context, gameType models.GameType, roundCount int) ([]int64, error) {
	var (
		candidates []*models.Question
		err        error
	)
	if gameType == models.GameTypeWordBlitz {
		sets, serr := s.bank.ListSets(ctx)
		if serr != nil {
			return nil, serr
		}
		if len(sets) == 0 {
			return nil, apperr.NotFound("no question sets available")
		}
		set := sets[rand.Intn(len(sets))]
		candidates, err = s.bank.ListBySet(ctx, set.ID)
	} else {
		candidates, err = s.bank.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperr.NotFound("no questions available")
	}

	picked := make([]*models.Question, len(candidates))
	copy(picked, candidates)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	if roundCount > 0 && roundCount < len(picked) {
		picked = picked[:roundCount]
	}

	ids := make([]int64, 0, len(picked))
	for _, q := range picked {
		ids = append(ids, q.ID)
	}
	return ids, nil
}
