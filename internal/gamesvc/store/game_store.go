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

const gameColumns = `id, room, game_type, time_limit, started, start_time, current_turn, created_at, updated_at`

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

func scanGame(row pgx.Row) (*models.Game, error) {
	g := &models.Game{}
	err := row.Scan(
		&g.ID,
		&g.Room,
		&g.GameType,
		&g.TimeLimit,
		&g.Started,
		&g.StartTime,
		&g.CurrentTurn,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GameStore) GetByRoom(ctx context.Context, room string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE room = $1`

	g, err := scanGame(s.db.QueryRow(ctx, query, room))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // game not found
		}
		return nil, fmt.Errorf("failed to get game by room: %w", err)
	}
	return g, nil
}

func (s *GameStore) GetByID(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	g, err := scanGame(s.db.QueryRow(ctx, query, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return g, nil
}

// ListOpen returns games that have not started yet, newest first.
func (s *GameStore) ListOpen(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE started = false ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// CreateWithPlayers inserts the game and its initial roster in one
// transaction. usernames[0] becomes the creator; local games pass the whole
// player list up front, online games just the creator.
func (s *GameStore) CreateWithPlayers(ctx context.Context, game *models.Game, usernames []string) (*models.Game, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO games (room, game_type, time_limit)
		VALUES ($1, $2, $3)
		RETURNING ` + gameColumns

	created, err := scanGame(tx.QueryRow(ctx, query, game.Room, game.GameType, game.TimeLimit))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("game room %q already exists", game.Room)
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	for i, name := range usernames {
		_, err := tx.Exec(ctx,
			`INSERT INTO players (game_id, username, is_creator) VALUES ($1, $2, $3)`,
			created.ID, name, i == 0,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to add player %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit game creation: %w", err)
	}
	return created, nil
}

// StartWithAssignments marks the game started and bulk-replaces its round
// assignments. The game row is locked for the whole replace so an in-flight
// submission cannot validate against half-written assignments. Starting an
// already started game is a conflict.
func (s *GameStore) StartWithAssignments(ctx context.Context, gameID int64, letter string, questionIDs []int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var started bool
	err = tx.QueryRow(ctx, `SELECT started FROM games WHERE id = $1 FOR UPDATE`, gameID).Scan(&started)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("game not found")
		}
		return fmt.Errorf("failed to lock game: %w", err)
	}
	if started {
		return apperr.Conflict("game already started")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM game_questions WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}
	for _, qid := range questionIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO game_questions (game_id, question_id, letter) VALUES ($1, $2, $3)`,
			gameID, qid, letter,
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignment for question %d: %w", qid, err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE games
		SET started = true, start_time = now(), current_turn = 0, updated_at = now()
		WHERE id = $1
	`, gameID)
	if err != nil {
		return fmt.Errorf("failed to mark game started: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit game start: %w", err)
	}
	return nil
}

// AdvanceTurn rotates current_turn to the next player by join order and
// resets the round clock. Used by the turn policy when a submission arrives
// past the time limit in a turn-based game.
func (s *GameStore) AdvanceTurn(ctx context.Context, gameID int64) error {
	query := `
		UPDATE games
		SET current_turn = (current_turn + 1) % GREATEST((SELECT COUNT(*) FROM players WHERE game_id = $1), 1),
		    start_time = now(),
		    updated_at = now()
		WHERE id = $1
	`
	if _, err := s.db.Exec(ctx, query, gameID); err != nil {
		return fmt.Errorf("failed to advance turn: %w", err)
	}
	return nil
}
