package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TagRepository handles track tag database operations.
type TagRepository struct {
	pool *pgxpool.Pool
}

// ReplaceForTrack replaces all tags for a track with the given ordered set.
func (r *TagRepository) ReplaceForTrack(ctx context.Context, trackID uuid.UUID, tags []TrackTag) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM track_tags WHERE track_id = $1`, trackID); err != nil {
		return fmt.Errorf("deleting old tags: %w", err)
	}

	if len(tags) > 0 {
		query := `
			INSERT INTO track_tags (track_id, tag_name, position, fetched_at)
			SELECT $1, * FROM unnest($2::text[], $3::int[], $4::timestamptz[])
			ON CONFLICT (track_id, tag_name) DO NOTHING
		`
		tagNames := make([]string, len(tags))
		positions := make([]int, len(tags))
		fetchedAts := make([]time.Time, len(tags))
		for i, t := range tags {
			tagNames[i] = t.TagName
			positions[i] = t.Position
			fetchedAts[i] = t.FetchedAt
		}
		if _, err := tx.Exec(ctx, query, trackID, tagNames, positions, fetchedAts); err != nil {
			return fmt.Errorf("inserting tags: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetForTracks retrieves tags for multiple tracks, returning a map of
// track ID to ordered tag names.
func (r *TagRepository) GetForTracks(ctx context.Context, trackIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string)
	if len(trackIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT track_id, tag_name
		FROM track_tags
		WHERE track_id = ANY($1)
		ORDER BY track_id, position
	`
	rows, err := r.pool.Query(ctx, query, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("querying track tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var trackID uuid.UUID
		var tagName string
		if err := rows.Scan(&trackID, &tagName); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		result[trackID] = append(result[trackID], tagName)
	}
	return result, rows.Err()
}
