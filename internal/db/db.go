// Package db provides PostgreSQL database access for the recommendation pipeline.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a queried row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Users returns a UserRepository.
func (db *DB) Users() *UserRepository {
	return &UserRepository{pool: db.pool}
}

// Tracks returns a TrackRepository.
func (db *DB) Tracks() *TrackRepository {
	return &TrackRepository{pool: db.pool}
}

// Tags returns a TagRepository.
func (db *DB) Tags() *TagRepository {
	return &TagRepository{pool: db.pool}
}

// Similar returns a SimilarRepository.
func (db *DB) Similar() *SimilarRepository {
	return &SimilarRepository{pool: db.pool}
}

// Metadata returns a MetadataRepository.
func (db *DB) Metadata() *MetadataRepository {
	return &MetadataRepository{pool: db.pool}
}

// History returns a HistoryRepository.
func (db *DB) History() *HistoryRepository {
	return &HistoryRepository{pool: db.pool}
}

// Recommendations returns a RecommendationRepository.
func (db *DB) Recommendations() *RecommendationRepository {
	return &RecommendationRepository{pool: db.pool}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
