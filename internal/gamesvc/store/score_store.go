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

// ComputeFunc maps the session's current submissions to per-player totals.
// The scoring rules themselves live in the service layer; this store only
// guarantees the read-compute-overwrite runs as one serialized unit.
type ComputeFunc func(game *models.Game, players []*models.Player, subs []*models.Submission) map[int64]int

type ScoreStore struct {
	db *pgxpool.Pool
}

func NewScoreStore(db *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{db: db}
}

// Recalculate overwrites every player's score for the game from the set of
// resolved submissions. The game row is locked for the duration so two
// recomputations (or a recompute racing a vote) cannot interleave.
func (s *ScoreStore) Recalculate(ctx context.Context, gameID int64, compute ComputeFunc) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	game, err := scanGame(tx.QueryRow(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1 FOR UPDATE`, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("game not found")
		}
		return fmt.Errorf("failed to lock game: %w", err)
	}

	players, err := listPlayersTx(ctx, tx, gameID)
	if err != nil {
		return err
	}
	subs, err := listSubmissionsTx(ctx, tx, gameID)
	if err != nil {
		return err
	}

	scores := compute(game, players, subs)

	// full overwrite: players with no correct submissions drop back to zero
	for _, p := range players {
		if _, err := tx.Exec(ctx, `UPDATE players SET score = $2 WHERE id = $1`, p.ID, scores[p.ID]); err != nil {
			return fmt.Errorf("failed to update score for player %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit score recalculation: %w", err)
	}
	return nil
}

func listPlayersTx(ctx context.Context, tx pgx.Tx, gameID int64) ([]*models.Player, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+playerColumns+` FROM players WHERE game_id = $1 ORDER BY joined_at, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func listSubmissionsTx(ctx context.Context, tx pgx.Tx, gameID int64) ([]*models.Submission, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
