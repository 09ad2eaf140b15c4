package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// AssignmentStore reads the game_questions rows created at session start.
// Writes happen only through GameStore.StartWithAssignments.
type AssignmentStore struct {
	db *pgxpool.Pool
}

func NewAssignmentStore(db *pgxpool.Pool) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func (s *AssignmentStore) ListByGame(ctx context.Context, gameID int64) ([]*models.RoundAssignment, error) {
	query := `
		SELECT gq.id, gq.game_id, gq.question_id, gq.letter, q.prompt
		FROM game_questions gq
		JOIN questions q ON q.id = gq.question_id
		WHERE gq.game_id = $1
		ORDER BY gq.id
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.RoundAssignment
	for rows.Next() {
		a := &models.RoundAssignment{}
		if err := rows.Scan(&a.ID, &a.GameID, &a.QuestionID, &a.Letter, &a.Prompt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (s *AssignmentStore) Get(ctx context.Context, gameID, questionID int64) (*models.RoundAssignment, error) {
	query := `
		SELECT gq.id, gq.game_id, gq.question_id, gq.letter, q.prompt
		FROM game_questions gq
		JOIN questions q ON q.id = gq.question_id
		WHERE gq.game_id = $1 AND gq.question_id = $2
	`

	a := &models.RoundAssignment{}
	err := s.db.QueryRow(ctx, query, gameID, questionID).Scan(&a.ID, &a.GameID, &a.QuestionID, &a.Letter, &a.Prompt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no assignment for this question
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}
