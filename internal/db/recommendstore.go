package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rayers1001/recommendations-ml-spotify/internal/recommend"
)

// RecommendStore adapts the database to the recommendation core's Store
// and Writer interfaces.
type RecommendStore struct {
	pool *pgxpool.Pool
}

// RecommendStore returns the recommendation core adapter.
func (db *DB) RecommendStore() *RecommendStore {
	return &RecommendStore{pool: db.pool}
}

// GetListeningHistory returns all history rows for a user.
func (s *RecommendStore) GetListeningHistory(ctx context.Context, userID uuid.UUID) ([]recommend.HistoryEntry, error) {
	history, err := (&HistoryRepository{pool: s.pool}).GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]recommend.HistoryEntry, len(history))
	for i, h := range history {
		entries[i] = recommend.HistoryEntry{
			TrackID:      h.TrackID,
			PlayCount:    h.PlayCount,
			LastPlayedAt: h.LastPlayedAt,
		}
	}
	return entries, nil
}

// GetTagsForTracks returns the tags of each given track.
func (s *RecommendStore) GetTagsForTracks(ctx context.Context, trackIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	return (&TagRepository{pool: s.pool}).GetForTracks(ctx, trackIDs)
}

// GetSimilarTracks returns the stored similar list for a track, most
// similar first.
func (s *RecommendStore) GetSimilarTracks(ctx context.Context, trackID uuid.UUID) ([]uuid.UUID, error) {
	return (&SimilarRepository{pool: s.pool}).GetForTrack(ctx, trackID)
}

// GetTaggedTracks returns tracks carrying any of the given tags, excluding
// the given IDs. Tags on each result are limited to the queried subset.
func (s *RecommendStore) GetTaggedTracks(ctx context.Context, tags []string, exclude []uuid.UUID) ([]recommend.TaggedTrack, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	query := `
		SELECT track_id, array_agg(DISTINCT tag_name)
		FROM track_tags
		WHERE tag_name = ANY($1) AND NOT (track_id = ANY($2))
		GROUP BY track_id
	`
	if exclude == nil {
		exclude = []uuid.UUID{}
	}
	rows, err := s.pool.Query(ctx, query, tags, exclude)
	if err != nil {
		return nil, fmt.Errorf("querying tagged tracks: %w", err)
	}
	defer rows.Close()

	var tracks []recommend.TaggedTrack
	for rows.Next() {
		var t recommend.TaggedTrack
		if err := rows.Scan(&t.TrackID, &t.Tags); err != nil {
			return nil, fmt.Errorf("scanning tagged track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// GetExistingRecommendations returns the status of every stored
// recommendation for the user.
func (s *RecommendStore) GetExistingRecommendations(ctx context.Context, userID uuid.UUID) ([]recommend.RecommendationStatus, error) {
	query := `
		SELECT track_id, is_played, COALESCE(user_feedback, '')
		FROM recommendations
		WHERE user_id = $1
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying existing recommendations: %w", err)
	}
	defer rows.Close()

	var statuses []recommend.RecommendationStatus
	for rows.Next() {
		var st recommend.RecommendationStatus
		if err := rows.Scan(&st.TrackID, &st.IsPlayed, &st.Feedback); err != nil {
			return nil, fmt.Errorf("scanning recommendation status: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

// UpsertRecommendation persists one scored track for a user.
func (s *RecommendStore) UpsertRecommendation(ctx context.Context, userID, trackID uuid.UUID, rating float64, source string) (recommend.UpsertOutcome, error) {
	rec := Recommendation{
		UserID:  userID,
		TrackID: trackID,
		Rating:  rating,
		Source:  source,
	}
	outcome, err := (&RecommendationRepository{pool: s.pool}).Upsert(ctx, &rec)
	if err != nil {
		return 0, err
	}
	switch outcome {
	case RecInserted:
		return recommend.OutcomeInserted, nil
	case RecUpdated:
		return recommend.OutcomeUpdated, nil
	default:
		return recommend.OutcomeSkipped, nil
	}
}
