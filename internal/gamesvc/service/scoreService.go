package service

import (
	"context"

	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// ScoreService recomputes session scores from the submission history.
// The recomputation is authoritative: it derives every player's total from
// scratch and overwrites the stored value, so repeated runs converge and a
// flipped verdict is reflected without compensating deltas.
type ScoreService struct {
	scores ScoreStore
}

func NewScoreService(scores ScoreStore) *ScoreService {
	return &ScoreService{scores: scores}
}

// ComputeScores derives the full score map for a session. Every roster member
// gets an entry, including players whose total is zero; the overwrite depends
// on that. Only submissions whose merged verdict is correct earn points.
func ComputeScores(game *models.Game, players []*models.Player, subs []*models.Submission) map[int64]int {
	variant := game.GameType.Variant()

	totals := make(map[int64]int, len(players))
	for _, p := range players {
		totals[p.ID] = 0
	}

	for _, sub := range subs {
		if !sub.Correct() {
			continue
		}
		if _, ok := totals[sub.PlayerID]; !ok {
			// submissions from a since-kicked player score nothing
			continue
		}
		if variant.WordLengthScoring {
			totals[sub.PlayerID] += len([]rune(sub.Word))
		} else {
			totals[sub.PlayerID] += models.PointsPerCorrect
		}
	}
	return totals
}

// Recalculate rebuilds and persists the scores for one session.
func (s *ScoreService) Recalculate(ctx context.Context, gameID int64) error {
	return s.scores.Recalculate(ctx, gameID, ComputeScores)
}
