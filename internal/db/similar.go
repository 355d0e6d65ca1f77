package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SimilarRepository handles similar-track list database operations.
type SimilarRepository struct {
	pool *pgxpool.Pool
}

// ReplaceForTrack replaces the ordered similar-track list for a track.
func (r *SimilarRepository) ReplaceForTrack(ctx context.Context, trackID uuid.UUID, similar []SimilarTrack) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM similar_tracks WHERE track_id = $1`, trackID); err != nil {
		return fmt.Errorf("deleting old similar tracks: %w", err)
	}

	if len(similar) > 0 {
		query := `
			INSERT INTO similar_tracks (track_id, position, similar_track_id, fetched_at)
			SELECT $1, * FROM unnest($2::int[], $3::uuid[], $4::timestamptz[])
		`
		positions := make([]int, len(similar))
		similarIDs := make([]uuid.UUID, len(similar))
		fetchedAts := make([]time.Time, len(similar))
		for i, s := range similar {
			positions[i] = s.Position
			similarIDs[i] = s.SimilarTrackID
			fetchedAts[i] = s.FetchedAt
		}
		if _, err := tx.Exec(ctx, query, trackID, positions, similarIDs, fetchedAts); err != nil {
			return fmt.Errorf("inserting similar tracks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetForTrack retrieves the similar-track IDs for a track, most similar first.
func (r *SimilarRepository) GetForTrack(ctx context.Context, trackID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT similar_track_id
		FROM similar_tracks
		WHERE track_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, trackID)
	if err != nil {
		return nil, fmt.Errorf("querying similar tracks: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning similar track: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
