package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	log "github.com/sirupsen/logrus"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// SubmissionService validates and records answers. Checks run in a fixed
// order so a request failing several of them always reports the same error:
// session exists, session started, time remaining, caller participates,
// assignment exists, non-empty text, letter constraint, then the
// variant-specific repeat check.
type SubmissionService struct {
	games       GameStore
	players     PlayerStore
	assignments AssignmentStore
	submissions SubmissionStore
	now         func() time.Time
}

func NewSubmissionService(games GameStore, players PlayerStore, assignments AssignmentStore, submissions SubmissionStore) *SubmissionService {
	return &SubmissionService{
		games:       games,
		players:     players,
		assignments: assignments,
		submissions: submissions,
		now:         time.Now,
	}
}

// Submit records one answer for one assignment. The returned submission is
// accepted but unresolved; a verdict path decides correctness later.
func (s *SubmissionService) Submit(ctx context.Context, room, username string, questionID int64, word string) (*models.Submission, error) {
	word = strings.TrimSpace(word)

	game, player, err := s.admitPlayer(ctx, room, username)
	if err != nil {
		return nil, err
	}

	if err := s.checkAnswer(ctx, game, questionID, word); err != nil {
		return nil, err
	}

	sub, err := s.submissions.InsertAccepted(ctx, game.ID, questionID, player.ID, word)
	if err != nil {
		return nil, err
	}

	if game.GameType.Variant().TurnBased {
		s.rotateTurn(ctx, game.ID)
	}
	return sub, nil
}

// SubmitResult reports the outcome for one answer in a batch submit.
type SubmitResult struct {
	Word     string `json:"word"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// SubmitAll records a full answer sheet in one call, keyed by question ID.
// Session-level checks run once; each answer then passes or fails on its own,
// so one bad row does not void the rest of the sheet.
func (s *SubmissionService) SubmitAll(ctx context.Context, room, username string, answers map[int64]string) (map[int64]SubmitResult, error) {
	if len(answers) == 0 {
		return nil, apperr.Validation("no answers submitted")
	}

	game, player, err := s.admitPlayer(ctx, room, username)
	if err != nil {
		return nil, err
	}

	results := make(map[int64]SubmitResult, len(answers))
	for questionID, raw := range answers {
		word := strings.TrimSpace(raw)
		if err := s.checkAnswer(ctx, game, questionID, word); err != nil {
			if apperr.KindOf(err) == apperr.KindUnknown {
				return nil, err
			}
			results[questionID] = SubmitResult{Word: word, Reason: err.Error()}
			continue
		}
		if _, err := s.submissions.InsertAccepted(ctx, game.ID, questionID, player.ID, word); err != nil {
			if apperr.KindOf(err) == apperr.KindUnknown {
				return nil, err
			}
			results[questionID] = SubmitResult{Word: word, Reason: err.Error()}
			continue
		}
		results[questionID] = SubmitResult{Word: word, Accepted: true}
	}
	return results, nil
}

// admitPlayer runs the session-level half of the validation order.
func (s *SubmissionService) admitPlayer(ctx context.Context, room, username string) (*models.Game, *models.Player, error) {
	game, err := s.games.GetByRoom(ctx, room)
	if err != nil {
		return nil, nil, err
	}
	if game == nil {
		return nil, nil, apperr.NotFound("game %s not found", room)
	}
	if !game.Started {
		return nil, nil, apperr.Validation("game has not started yet")
	}

	if game.Ended(s.now()) {
		// turn policy: in the turn-based variant a late submission costs
		// the turn, so the expired check rotates before rejecting
		if game.GameType.Variant().TurnBased {
			s.rotateTurn(ctx, game.ID)
		}
		return nil, nil, apperr.TimeExpired("time is up for this round")
	}

	player, err := s.players.GetByGameAndName(ctx, game.ID, username)
	if err != nil {
		return nil, nil, err
	}
	if player == nil {
		return nil, nil, apperr.NotAuthorized("%s is not a player in this game", username)
	}
	return game, player, nil
}

// checkAnswer runs the per-answer half: assignment membership, non-empty
// text, letter constraint and the anti-repeat rule where the variant
// carries it.
func (s *SubmissionService) checkAnswer(ctx context.Context, game *models.Game, questionID int64, word string) error {
	assignment, err := s.assignments.Get(ctx, game.ID, questionID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return apperr.Validation("question %d is not part of this game", questionID)
	}

	if word == "" {
		return apperr.Validation("answer must not be empty")
	}
	if !matchesLetter(word, assignment.Letter) {
		return apperr.Validation("answer must start with the letter %s", assignment.Letter)
	}

	if game.GameType.Variant().AntiRepeat {
		used, err := s.submissions.ExistsWord(ctx, game.ID, word)
		if err != nil {
			return err
		}
		if used {
			return apperr.Conflict("the word %q has already been used", word)
		}
	}
	return nil
}

// matchesLetter compares the first rune case-insensitively against the
// session letter.
func matchesLetter(word, letter string) bool {
	if letter == "" {
		return true
	}
	for _, r := range word {
		for _, l := range letter {
			return unicode.ToUpper(r) == unicode.ToUpper(l)
		}
	}
	return false
}

// rotateTurn is best effort: the caller's own outcome is already decided and
// a failed rotation should not mask it.
func (s *SubmissionService) rotateTurn(ctx context.Context, gameID int64) {
	if err := s.games.AdvanceTurn(ctx, gameID); err != nil {
		log.WithError(err).WithField("game_id", gameID).Error("failed to advance turn")
	}
}
