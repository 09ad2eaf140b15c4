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

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, username, email, passwordHash string, role int) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, username, email, password_hash, role, created_at, updated_at
	`

	u := &models.User{}
	err := s.db.QueryRow(ctx, query, username, email, passwordHash, role).Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_username_key":
				return nil, apperr.Conflict("username already exists")
			case "users_email_key":
				return nil, apperr.Conflict("email already exists")
			}
			return nil, apperr.Conflict("user already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, `WHERE email = $1`, email)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, `WHERE username = $1`, username)
}

func (s *UserStore) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	return s.getOne(ctx, `WHERE user_id = $1`, userID)
}

func (s *UserStore) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT user_id, username, email, password_hash, role, created_at, updated_at
		FROM users ` + where

	u := &models.User{}
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // user not found
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}
