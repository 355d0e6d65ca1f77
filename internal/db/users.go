package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates a user keyed by Spotify ID.
// The database row ID is written back into user.ID.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, spotify_id, display_name, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (spotify_id) DO UPDATE SET
			display_name = EXCLUDED.display_name
		RETURNING id, created_at
	`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.SpotifyID,
		user.DisplayName,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// GetBySpotifyID retrieves a user by their Spotify ID.
func (r *UserRepository) GetBySpotifyID(ctx context.Context, spotifyID string) (*User, error) {
	query := `
		SELECT id, spotify_id, display_name, created_at
		FROM users
		WHERE spotify_id = $1
	`
	var user User
	err := r.pool.QueryRow(ctx, query, spotifyID).Scan(
		&user.ID,
		&user.SpotifyID,
		&user.DisplayName,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}
