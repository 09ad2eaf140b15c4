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

const playerColumns = `id, game_id, username, is_creator, score, joined_at`

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(
		&p.ID,
		&p.GameID,
		&p.Username,
		&p.IsCreator,
		&p.Score,
		&p.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByGame returns the roster in join order; turn indexes refer to this order.
func (s *PlayerStore) ListByGame(ctx context.Context, gameID int64) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 ORDER BY joined_at, id`

	rows, err := s.db.Query(ctx, query, gameID)
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

func (s *PlayerStore) GetByGameAndName(ctx context.Context, gameID int64, username string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 AND username = $2`

	p, err := scanPlayer(s.db.QueryRow(ctx, query, gameID, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // not a participant
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *PlayerStore) GetByID(ctx context.Context, playerID int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p, err := scanPlayer(s.db.QueryRow(ctx, query, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *PlayerStore) GetCreator(ctx context.Context, gameID int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 AND is_creator = true`

	p, err := scanPlayer(s.db.QueryRow(ctx, query, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	return p, nil
}

func (s *PlayerStore) Add(ctx context.Context, gameID int64, username string, isCreator bool) (*models.Player, error) {
	query := `
		INSERT INTO players (game_id, username, is_creator)
		VALUES ($1, $2, $3)
		RETURNING ` + playerColumns

	p, err := scanPlayer(s.db.QueryRow(ctx, query, gameID, username, isCreator))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Conflict("%s has already joined this game", username)
		}
		return nil, fmt.Errorf("failed to add player: %w", err)
	}
	return p, nil
}

// Remove deletes a player row. Only the turn-based variant exposes this (kick).
func (s *PlayerStore) Remove(ctx context.Context, gameID int64, username string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM players WHERE game_id = $1 AND username = $2`, gameID, username)
	if err != nil {
		return fmt.Errorf("failed to remove player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("player %s not found in this game", username)
	}
	return nil
}
