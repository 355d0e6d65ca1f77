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

// TrackRepository handles track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates a track keyed by Spotify ID.
// Identity fields win on first insert; popularity is refreshed on conflict.
// The database row ID is written back into track.ID.
func (r *TrackRepository) Upsert(ctx context.Context, track *Track) error {
	query := `
		INSERT INTO tracks (id, spotify_id, name, artist, popularity, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (spotify_id) DO UPDATE SET
			popularity = COALESCE(EXCLUDED.popularity, tracks.popularity),
			duration_ms = COALESCE(EXCLUDED.duration_ms, tracks.duration_ms)
		RETURNING id, created_at
	`
	if track.ID == uuid.Nil {
		track.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		track.ID,
		track.SpotifyID,
		track.Name,
		track.Artist,
		track.Popularity,
		track.DurationMs,
	).Scan(&track.ID, &track.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting track: %w", err)
	}
	return nil
}

// UpsertBatch inserts or updates multiple tracks efficiently.
// Row IDs are written back into the given slice.
func (r *TrackRepository) UpsertBatch(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO tracks (id, spotify_id, name, artist, popularity, duration_ms, created_at)
		SELECT * FROM unnest($1::uuid[], $2::text[], $3::text[], $4::text[], $5::int[], $6::int[], $7::timestamptz[])
		ON CONFLICT (spotify_id) DO UPDATE SET
			popularity = COALESCE(EXCLUDED.popularity, tracks.popularity),
			duration_ms = COALESCE(EXCLUDED.duration_ms, tracks.duration_ms)
		RETURNING id, spotify_id
	`

	ids := make([]uuid.UUID, len(tracks))
	spotifyIDs := make([]string, len(tracks))
	names := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	popularities := make([]*int, len(tracks))
	durations := make([]*int, len(tracks))
	createdAts := make([]time.Time, len(tracks))

	now := time.Now()
	for i, t := range tracks {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		ids[i] = t.ID
		spotifyIDs[i] = t.SpotifyID
		names[i] = t.Name
		artists[i] = t.Artist
		popularities[i] = t.Popularity
		durations[i] = t.DurationMs
		createdAts[i] = now
	}

	rows, err := r.pool.Query(ctx, query, ids, spotifyIDs, names, artists, popularities, durations, createdAts)
	if err != nil {
		return fmt.Errorf("batch upserting tracks: %w", err)
	}
	defer rows.Close()

	assigned := make(map[string]uuid.UUID, len(tracks))
	for rows.Next() {
		var id uuid.UUID
		var spotifyID string
		if err := rows.Scan(&id, &spotifyID); err != nil {
			return fmt.Errorf("scanning upserted track: %w", err)
		}
		assigned[spotifyID] = id
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("batch upserting tracks: %w", err)
	}

	for i := range tracks {
		if id, ok := assigned[tracks[i].SpotifyID]; ok {
			tracks[i].ID = id
		}
	}
	return nil
}

// GetBySpotifyID retrieves a track by Spotify ID.
func (r *TrackRepository) GetBySpotifyID(ctx context.Context, spotifyID string) (*Track, error) {
	query := `
		SELECT id, spotify_id, name, artist, popularity, duration_ms, created_at
		FROM tracks
		WHERE spotify_id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, spotifyID))
}

// GetWithoutMetadata returns tracks that have no track_metadata row yet,
// oldest first, limited to the given batch size.
func (r *TrackRepository) GetWithoutMetadata(ctx context.Context, limit int) ([]Track, error) {
	query := `
		SELECT t.id, t.spotify_id, t.name, t.artist, t.popularity, t.duration_ms, t.created_at
		FROM tracks t
		LEFT JOIN track_metadata m ON t.id = m.track_id
		WHERE m.track_id IS NULL
		ORDER BY t.created_at
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying tracks without metadata: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var track Track
		if err := rows.Scan(
			&track.ID,
			&track.SpotifyID,
			&track.Name,
			&track.Artist,
			&track.Popularity,
			&track.DurationMs,
			&track.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

func (r *TrackRepository) scanOne(row pgx.Row) (*Track, error) {
	var track Track
	err := row.Scan(
		&track.ID,
		&track.SpotifyID,
		&track.Name,
		&track.Artist,
		&track.Popularity,
		&track.DurationMs,
		&track.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	return &track, nil
}
