package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlayOutcome describes what RecordPlay did with a play event.
type PlayOutcome int

const (
	// PlayCreated means a new listening_history row was created.
	PlayCreated PlayOutcome = iota
	// PlayCounted means an existing row's play count was incremented.
	PlayCounted
	// PlayIgnored means the event was not newer than the stored
	// last_played_at and was dropped to avoid double counting.
	PlayIgnored
)

// HistoryRepository handles listening history database operations.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// RecordPlay registers one play of a track by a user.
// A play is only counted when playedAt is strictly newer than the stored
// last_played_at, so re-processing an overlapping recently-played window
// does not inflate counts.
func (r *HistoryRepository) RecordPlay(ctx context.Context, userID, trackID uuid.UUID, playedAt time.Time) (PlayOutcome, error) {
	var lastPlayedAt time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT last_played_at FROM listening_history WHERE user_id = $1 AND track_id = $2`,
		userID, trackID,
	).Scan(&lastPlayedAt)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err := r.pool.Exec(ctx, `
			INSERT INTO listening_history (user_id, track_id, play_count, first_played_at, last_played_at)
			VALUES ($1, $2, 1, $3, $3)
		`, userID, trackID, playedAt)
		if isUniqueViolation(err) {
			// Lost a race with a concurrent writer; the play is recorded.
			return PlayIgnored, nil
		}
		if err != nil {
			return 0, fmt.Errorf("inserting listening history: %w", err)
		}
		return PlayCreated, nil

	case err != nil:
		return 0, fmt.Errorf("querying listening history: %w", err)

	case !playedAt.After(lastPlayedAt):
		return PlayIgnored, nil

	default:
		_, err := r.pool.Exec(ctx, `
			UPDATE listening_history
			SET play_count = play_count + 1, last_played_at = $3
			WHERE user_id = $1 AND track_id = $2
		`, userID, trackID, playedAt)
		if err != nil {
			return 0, fmt.Errorf("updating listening history: %w", err)
		}
		return PlayCounted, nil
	}
}

// GetForUser retrieves all listening history rows for a user,
// most played first, ties broken by most recent last_played_at.
func (r *HistoryRepository) GetForUser(ctx context.Context, userID uuid.UUID) ([]ListeningHistory, error) {
	query := `
		SELECT user_id, track_id, play_count, first_played_at, last_played_at
		FROM listening_history
		WHERE user_id = $1
		ORDER BY play_count DESC, last_played_at DESC, track_id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying listening history: %w", err)
	}
	defer rows.Close()

	var history []ListeningHistory
	for rows.Next() {
		var h ListeningHistory
		if err := rows.Scan(
			&h.UserID,
			&h.TrackID,
			&h.PlayCount,
			&h.FirstPlayedAt,
			&h.LastPlayedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning listening history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
