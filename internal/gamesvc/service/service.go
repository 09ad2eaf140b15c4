// Package service holds the game core: session lifecycle, round assignment,
// submission validation, verdict resolution and score aggregation. Services
// accept narrow store interfaces so the postgres layer stays swappable.
package service

import (
	"context"

	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
	"github.com/wordrush/wordrush-services/internal/gamesvc/oracle"
	"github.com/wordrush/wordrush-services/internal/gamesvc/store"
)

// Identity is the authenticated caller, resolved from the request token.
// Admin privilege comes from the user role, independent of any creator flag.
type Identity struct {
	UserID   int64
	Username string
	Role     int
}

func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

type GameStore interface {
	GetByRoom(ctx context.Context, room string) (*models.Game, error)
	GetByID(ctx context.Context, gameID int64) (*models.Game, error)
	ListOpen(ctx context.Context) ([]*models.Game, error)
	CreateWithPlayers(ctx context.Context, game *models.Game, usernames []string) (*models.Game, error)
	StartWithAssignments(ctx context.Context, gameID int64, letter string, questionIDs []int64) error
	AdvanceTurn(ctx context.Context, gameID int64) error
}

type PlayerStore interface {
	ListByGame(ctx context.Context, gameID int64) ([]*models.Player, error)
	GetByGameAndName(ctx context.Context, gameID int64, username string) (*models.Player, error)
	GetByID(ctx context.Context, playerID int64) (*models.Player, error)
	GetCreator(ctx context.Context, gameID int64) (*models.Player, error)
	Add(ctx context.Context, gameID int64, username string, isCreator bool) (*models.Player, error)
	Remove(ctx context.Context, gameID int64, username string) error
}

// QuestionBank is the read-only catalog the round engine draws from. The
// redis cache and the raw postgres store both satisfy it.
type QuestionBank interface {
	ListSets(ctx context.Context) ([]*models.QuestionSet, error)
	ListBySet(ctx context.Context, setID int64) ([]*models.Question, error)
	ListAll(ctx context.Context) ([]*models.Question, error)
}

type AssignmentStore interface {
	ListByGame(ctx context.Context, gameID int64) ([]*models.RoundAssignment, error)
	Get(ctx context.Context, gameID, questionID int64) (*models.RoundAssignment, error)
}

type SubmissionStore interface {
	GetByID(ctx context.Context, submissionID int64) (*models.Submission, error)
	InsertAccepted(ctx context.Context, gameID, questionID, playerID int64, word string) (*models.Submission, error)
	ExistsWord(ctx context.Context, gameID int64, word string) (bool, error)
	HistoryByGame(ctx context.Context, gameID int64) ([]*models.AnswerRecord, error)
	SetVoteRequested(ctx context.Context, submissionID int64) error
	CastVote(ctx context.Context, submissionID, voterUserID int64, value bool) (*models.Submission, error)
	UpdateAutomated(ctx context.Context, submissionID int64, correct bool, explanation string) (*models.Submission, error)
	ApplyOverride(ctx context.Context, submissionID int64, value bool) (*models.Submission, error)
}

type ScoreStore interface {
	Recalculate(ctx context.Context, gameID int64, compute store.ComputeFunc) error
}

// Judge is the external correctness oracle.
type Judge interface {
	Judge(ctx context.Context, prompt, answer string) (*oracle.Verdict, error)
}

// PlayerState is the roster entry returned by state queries.
type PlayerState struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	IsCreator bool   `json:"is_creator"`
}

func rosterStates(players []*models.Player) []PlayerState {
	states := make([]PlayerState, 0, len(players))
	for _, p := range players {
		states = append(states, PlayerState{Username: p.Username, Score: p.Score, IsCreator: p.IsCreator})
	}
	return states
}
