package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UpsertOutcome describes what an Upsert did with a recommendation.
type UpsertOutcome int

const (
	// RecInserted means a new recommendation row was created.
	RecInserted UpsertOutcome = iota
	// RecUpdated means an existing non-terminal row got a new rating/source.
	RecUpdated
	// RecSkipped means the row was left untouched: it is terminal, the
	// rating and source were unchanged, or a concurrent insert won the race.
	RecSkipped
)

// RecommendationRepository handles recommendation database operations.
type RecommendationRepository struct {
	pool *pgxpool.Pool
}

// Upsert writes a recommendation keyed by (user, track).
// Inserts when absent; updates rating and source when present and not yet
// played or rated; leaves played/rated rows untouched so user-observed
// feedback is never overwritten.
func (r *RecommendationRepository) Upsert(ctx context.Context, rec *Recommendation) (UpsertOutcome, error) {
	var existing Recommendation
	err := r.pool.QueryRow(ctx, `
		SELECT id, rating, source, is_played, user_feedback
		FROM recommendations
		WHERE user_id = $1 AND track_id = $2
	`, rec.UserID, rec.TrackID).Scan(
		&existing.ID,
		&existing.Rating,
		&existing.Source,
		&existing.IsPlayed,
		&existing.UserFeedback,
	)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		_, err := r.pool.Exec(ctx, `
			INSERT INTO recommendations (id, user_id, track_id, rating, source, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		`, rec.ID, rec.UserID, rec.TrackID, rec.Rating, rec.Source)
		if isUniqueViolation(err) {
			// Concurrent writer got there first; treat as a non-fatal skip.
			return RecSkipped, nil
		}
		if err != nil {
			return 0, fmt.Errorf("inserting recommendation: %w", err)
		}
		return RecInserted, nil

	case err != nil:
		return 0, fmt.Errorf("querying recommendation: %w", err)

	case existing.Terminal():
		return RecSkipped, nil

	case existing.Rating == rec.Rating && existing.Source == rec.Source:
		return RecSkipped, nil

	default:
		_, err := r.pool.Exec(ctx, `
			UPDATE recommendations
			SET rating = $2, source = $3, updated_at = NOW()
			WHERE id = $1
		`, existing.ID, rec.Rating, rec.Source)
		if err != nil {
			return 0, fmt.Errorf("updating recommendation: %w", err)
		}
		rec.ID = existing.ID
		return RecUpdated, nil
	}
}

// GetPlaylistTracks retrieves the user's current recommendations joined
// with track data and tags, excluding skipped tracks, best rated first.
func (r *RecommendationRepository) GetPlaylistTracks(ctx context.Context, userID uuid.UUID, limit int) ([]PlaylistTrack, error) {
	query := `
		SELECT t.id, t.spotify_id, t.name, t.artist, rec.rating,
			COALESCE(array_agg(tt.tag_name ORDER BY tt.position) FILTER (WHERE tt.tag_name IS NOT NULL), '{}')
		FROM recommendations rec
		JOIN tracks t ON rec.track_id = t.id
		LEFT JOIN track_tags tt ON tt.track_id = t.id
		WHERE rec.user_id = $1
			AND (rec.user_feedback IS NULL OR rec.user_feedback <> $2)
		GROUP BY t.id, t.spotify_id, t.name, t.artist, rec.rating
		ORDER BY rec.rating DESC, t.id
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, FeedbackSkip, limit)
	if err != nil {
		return nil, fmt.Errorf("querying playlist tracks: %w", err)
	}
	defer rows.Close()

	var tracks []PlaylistTrack
	for rows.Next() {
		var pt PlaylistTrack
		if err := rows.Scan(
			&pt.TrackID,
			&pt.SpotifyID,
			&pt.Name,
			&pt.Artist,
			&pt.Rating,
			&pt.Tags,
		); err != nil {
			return nil, fmt.Errorf("scanning playlist track: %w", err)
		}
		tracks = append(tracks, pt)
	}
	return tracks, rows.Err()
}

// MarkPlayed flags a recommendation as played, making it terminal.
func (r *RecommendationRepository) MarkPlayed(ctx context.Context, userID, trackID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE recommendations
		SET is_played = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND track_id = $2
	`, userID, trackID)
	if err != nil {
		return fmt.Errorf("marking recommendation played: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFeedback records user feedback on a recommendation, making it terminal.
func (r *RecommendationRepository) SetFeedback(ctx context.Context, userID, trackID uuid.UUID, feedback string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE recommendations
		SET user_feedback = $3, updated_at = NOW()
		WHERE user_id = $1 AND track_id = $2
	`, userID, trackID, feedback)
	if err != nil {
		return fmt.Errorf("setting recommendation feedback: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
