package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MetadataRepository handles Last.fm track metadata database operations.
type MetadataRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or refreshes the metadata row for a track.
func (r *MetadataRepository) Upsert(ctx context.Context, meta *TrackMetadata) error {
	query := `
		INSERT INTO track_metadata (track_id, listeners, playcount, wiki_summary, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (track_id) DO UPDATE SET
			listeners = EXCLUDED.listeners,
			playcount = EXCLUDED.playcount,
			wiki_summary = EXCLUDED.wiki_summary,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		meta.TrackID,
		meta.Listeners,
		meta.Playcount,
		meta.WikiSummary,
		meta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting track metadata: %w", err)
	}
	return nil
}
