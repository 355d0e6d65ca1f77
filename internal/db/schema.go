package db

import (
	"context"
	"fmt"
)

// schema is the full relational layout for the pipeline. All statements
// are idempotent so EnsureSchema can run on every start.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	spotify_id TEXT UNIQUE NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tracks (
	id UUID PRIMARY KEY,
	spotify_id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	artist TEXT NOT NULL,
	popularity INT,
	duration_ms INT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS track_tags (
	track_id UUID NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	tag_name TEXT NOT NULL,
	position INT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (track_id, tag_name)
);

CREATE INDEX IF NOT EXISTS idx_track_tags_tag_name ON track_tags(tag_name);

CREATE TABLE IF NOT EXISTS similar_tracks (
	track_id UUID NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	position INT NOT NULL,
	similar_track_id UUID NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	fetched_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (track_id, position)
);

CREATE TABLE IF NOT EXISTS track_metadata (
	track_id UUID PRIMARY KEY REFERENCES tracks(id) ON DELETE CASCADE,
	listeners BIGINT NOT NULL DEFAULT 0,
	playcount BIGINT NOT NULL DEFAULT 0,
	wiki_summary TEXT,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS listening_history (
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	track_id UUID NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	play_count INT NOT NULL DEFAULT 1,
	first_played_at TIMESTAMPTZ NOT NULL,
	last_played_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, track_id)
);

CREATE TABLE IF NOT EXISTS recommendations (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	track_id UUID NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	rating DOUBLE PRECISION NOT NULL,
	source TEXT NOT NULL,
	is_played BOOLEAN NOT NULL DEFAULT FALSE,
	user_feedback TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, track_id)
);

CREATE INDEX IF NOT EXISTS idx_recommendations_user_rating
	ON recommendations(user_id, rating DESC);
`

// EnsureSchema creates all tables and indexes if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
