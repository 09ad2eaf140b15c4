package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// QuestionStore reads the seeded question bank. The bank is read-only to the
// core; AddSet exists only for the custom-set endpoint.
type QuestionStore struct {
	db *pgxpool.Pool
}

func NewQuestionStore(db *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) ListSets(ctx context.Context) ([]*models.QuestionSet, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM question_sets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list question sets: %w", err)
	}
	defer rows.Close()

	var sets []*models.QuestionSet
	for rows.Next() {
		qs := &models.QuestionSet{}
		if err := rows.Scan(&qs.ID, &qs.Name); err != nil {
			return nil, err
		}
		sets = append(sets, qs)
	}
	return sets, rows.Err()
}

func (s *QuestionStore) ListBySet(ctx context.Context, setID int64) ([]*models.Question, error) {
	return s.list(ctx, `SELECT id, question_set_id, prompt FROM questions WHERE question_set_id = $1 ORDER BY id`, setID)
}

func (s *QuestionStore) ListAll(ctx context.Context) ([]*models.Question, error) {
	return s.list(ctx, `SELECT id, question_set_id, prompt FROM questions ORDER BY id`)
}

func (s *QuestionStore) list(ctx context.Context, query string, args ...interface{}) ([]*models.Question, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		q := &models.Question{}
		if err := rows.Scan(&q.ID, &q.QuestionSetID, &q.Prompt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *QuestionStore) GetPrompt(ctx context.Context, questionID int64) (string, error) {
	var prompt string
	err := s.db.QueryRow(ctx, `SELECT prompt FROM questions WHERE id = $1`, questionID).Scan(&prompt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("question %d not found", questionID)
		}
		return "", fmt.Errorf("failed to get question prompt: %w", err)
	}
	return prompt, nil
}

// AddSet creates a named set with its prompts in one transaction.
func (s *QuestionStore) AddSet(ctx context.Context, name string, prompts []string) (*models.QuestionSet, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qs := &models.QuestionSet{Name: name}
	err = tx.QueryRow(ctx, `INSERT INTO question_sets (name) VALUES ($1) RETURNING id`, name).Scan(&qs.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("question set %q already exists", name)
		}
		return nil, fmt.Errorf("failed to create question set: %w", err)
	}

	for _, prompt := range prompts {
		if _, err := tx.Exec(ctx, `INSERT INTO questions (question_set_id, prompt) VALUES ($1, $2)`, qs.ID, prompt); err != nil {
			return nil, fmt.Errorf("failed to insert question: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit question set: %w", err)
	}
	return qs, nil
}
