package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

const submissionColumns = `id, game_id, question_id, player_id, word, accepted, verdict, verdict_source,
	explanation, vote_requested, vote_yes, vote_no, admin_override, override_value, created_at`

type SubmissionStore struct {
	db *pgxpool.Pool
}

func NewSubmissionStore(db *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{db: db}
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	sub := &models.Submission{}
	err := row.Scan(
		&sub.ID,
		&sub.GameID,
		&sub.QuestionID,
		&sub.PlayerID,
		&sub.Word,
		&sub.Accepted,
		&sub.Verdict,
		&sub.VerdictSource,
		&sub.Explanation,
		&sub.VoteRequested,
		&sub.VoteYes,
		&sub.VoteNo,
		&sub.AdminOverride,
		&sub.OverrideValue,
		&sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionStore) GetByID(ctx context.Context, submissionID int64) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := scanSubmission(s.db.QueryRow(ctx, query, submissionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // submission not found
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// InsertAccepted persists a validated submission. The CTE takes a shared lock
// on the game row and re-checks the assignment inside the same statement, so
// a concurrent restart cannot slip a bulk assignment replace between the
// validator's read and this insert.
func (s *SubmissionStore) InsertAccepted(ctx context.Context, gameID, questionID, playerID int64, word string) (*models.Submission, error) {
	query := `
WITH locked_game AS (
  SELECT id
  FROM games
  WHERE id = $1
  FOR SHARE
)
INSERT INTO submissions (game_id, question_id, player_id, word, accepted, verdict)
SELECT lg.id, $2, $3, $4, true, 'unknown'
FROM locked_game lg
WHERE EXISTS (
  SELECT 1 FROM game_questions WHERE game_id = $1 AND question_id = $2
)
RETURNING ` + submissionColumns

	sub, err := scanSubmission(s.db.QueryRow(ctx, query, gameID, questionID, playerID, word))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// zero rows means the game vanished or the assignment was replaced mid-flight
			return nil, apperr.NotFound("question is no longer part of this game")
		}
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}
	return sub, nil
}

// ExistsWord reports whether the answer text was already used in the session
// (case-insensitive). Only the anti-repeat variant asks.
func (s *SubmissionStore) ExistsWord(ctx context.Context, gameID int64, word string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE game_id = $1 AND lower(word) = lower($2))`,
		gameID, word,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate word: %w", err)
	}
	return exists, nil
}

func (s *SubmissionStore) HistoryByGame(ctx context.Context, gameID int64) ([]*models.AnswerRecord, error) {
	query := `
		SELECT s.id, s.game_id, s.question_id, s.player_id, s.word, s.accepted, s.verdict, s.verdict_source,
		       s.explanation, s.vote_requested, s.vote_yes, s.vote_no, s.admin_override, s.override_value, s.created_at,
		       p.username, q.prompt
		FROM submissions s
		JOIN players p ON p.id = s.player_id
		JOIN questions q ON q.id = s.question_id
		WHERE s.game_id = $1
		ORDER BY s.id
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer history: %w", err)
	}
	defer rows.Close()

	var records []*models.AnswerRecord
	for rows.Next() {
		r := &models.AnswerRecord{}
		err := rows.Scan(
			&r.ID, &r.GameID, &r.QuestionID, &r.PlayerID, &r.Word, &r.Accepted, &r.Verdict, &r.VerdictSource,
			&r.Explanation, &r.VoteRequested, &r.VoteYes, &r.VoteNo, &r.AdminOverride, &r.OverrideValue, &r.CreatedAt,
			&r.Username, &r.Prompt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SubmissionStore) SetVoteRequested(ctx context.Context, submissionID int64) error {
	tag, err := s.db.Exec(ctx, `UPDATE submissions SET vote_requested = true WHERE id = $1`, submissionID)
	if err != nil {
		return fmt.Errorf("failed to request vote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("submission %d not found", submissionID)
	}
	return nil
}

// CastVote upserts the voter's vote and recomputes the tallies with the
// submission row locked, so concurrent voters cannot lose each other's
// counts. The merged verdict respects an existing admin override.
func (s *SubmissionStore) CastVote(ctx context.Context, submissionID, voterUserID int64, value bool) (*models.Submission, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := scanSubmission(tx.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, submissionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("submission %d not found", submissionID)
		}
		return nil, fmt.Errorf("failed to lock submission: %w", err)
	}
	if !sub.VoteRequested {
		return nil, apperr.Validation("voting has not been requested for this submission")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO submission_votes (submission_id, voter_user_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (submission_id, voter_user_id) DO UPDATE SET value = EXCLUDED.value
	`, submissionID, voterUserID, value)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert vote: %w", err)
	}

	var yes, no int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE value), COUNT(*) FILTER (WHERE NOT value)
		FROM submission_votes
		WHERE submission_id = $1
	`, submissionID).Scan(&yes, &no)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}

	sub.ApplyVoteTally(yes, no)
	if err := updateVerdictLocked(ctx, tx, sub); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}
	return sub, nil
}

// UpdateAutomated stores the automated checker's result for a submission.
func (s *SubmissionStore) UpdateAutomated(ctx context.Context, submissionID int64, correct bool, explanation string) (*models.Submission, error) {
	return s.mutateLocked(ctx, submissionID, func(sub *models.Submission) {
		sub.ApplyAutomated(correct, explanation)
	})
}

// ApplyOverride pins the verdict to the admin's value.
func (s *SubmissionStore) ApplyOverride(ctx context.Context, submissionID int64, value bool) (*models.Submission, error) {
	return s.mutateLocked(ctx, submissionID, func(sub *models.Submission) {
		sub.ApplyOverride(value)
	})
}

func (s *SubmissionStore) mutateLocked(ctx context.Context, submissionID int64, mutate func(*models.Submission)) (*models.Submission, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := scanSubmission(tx.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, submissionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("submission %d not found", submissionID)
		}
		return nil, fmt.Errorf("failed to lock submission: %w", err)
	}

	mutate(sub)
	if err := updateVerdictLocked(ctx, tx, sub); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit submission update: %w", err)
	}
	return sub, nil
}

func updateVerdictLocked(ctx context.Context, tx pgx.Tx, sub *models.Submission) error {
	_, err := tx.Exec(ctx, `
		UPDATE submissions
		SET verdict = $2, verdict_source = $3, explanation = $4,
		    vote_yes = $5, vote_no = $6, admin_override = $7, override_value = $8
		WHERE id = $1
	`, sub.ID, sub.Verdict, sub.VerdictSource, sub.Explanation,
		sub.VoteYes, sub.VoteNo, sub.AdminOverride, sub.OverrideValue)
	if err != nil {
		return fmt.Errorf("failed to update verdict: %w", err)
	}
	return nil
}
