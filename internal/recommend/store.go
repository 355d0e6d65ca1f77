package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Strategy identifies one independent candidate generation method.
type Strategy string

const (
	// StrategyTagOverlap proposes tracks sharing the user's favorite tags.
	StrategyTagOverlap Strategy = "tag_overlap"
	// StrategySimilar proposes tracks from Last.fm similar-track lists.
	StrategySimilar Strategy = "similar_track"
	// StrategyTopTracks re-proposes the user's own top tracks when the
	// other strategies come up short.
	StrategyTopTracks Strategy = "top_tracks"
)

// strategyOrder fixes the order used for deterministic tie-breaks when
// merging candidates across strategies.
var strategyOrder = []Strategy{StrategyTagOverlap, StrategySimilar, StrategyTopTracks}

// HistoryEntry is one aggregated listening history row.
type HistoryEntry struct {
	TrackID      uuid.UUID
	PlayCount    int
	LastPlayedAt time.Time
}

// TaggedTrack is a candidate track together with the subset of the
// queried tags it carries.
type TaggedTrack struct {
	TrackID uuid.UUID
	Tags    []string
}

// RecommendationStatus is the state of an already-persisted recommendation.
type RecommendationStatus struct {
	TrackID  uuid.UUID
	IsPlayed bool
	Feedback string // empty when the user has not rated the track
}

// Terminal reports whether the recommendation must not resurface.
func (s RecommendationStatus) Terminal() bool {
	return s.IsPlayed || s.Feedback != ""
}

// Store is the read side of the track/feature store the pipeline consumes.
// Implementations either succeed or return the storage error unchanged;
// retry policy belongs to the implementation, not the core.
type Store interface {
	// GetListeningHistory returns all history rows for a user.
	GetListeningHistory(ctx context.Context, userID uuid.UUID) ([]HistoryEntry, error)

	// GetTagsForTracks returns the tags of each given track.
	GetTagsForTracks(ctx context.Context, trackIDs []uuid.UUID) (map[uuid.UUID][]string, error)

	// GetSimilarTracks returns the stored similar-track list for a track,
	// most similar first.
	GetSimilarTracks(ctx context.Context, trackID uuid.UUID) ([]uuid.UUID, error)

	// GetTaggedTracks returns tracks carrying any of the given tags,
	// excluding the given track IDs. Each result's Tags holds the subset
	// of the queried tags the track carries.
	GetTaggedTracks(ctx context.Context, tags []string, exclude []uuid.UUID) ([]TaggedTrack, error)

	// GetExistingRecommendations returns the status of every
	// recommendation already stored for the user.
	GetExistingRecommendations(ctx context.Context, userID uuid.UUID) ([]RecommendationStatus, error)
}

// UpsertOutcome describes what persisting one recommendation did.
type UpsertOutcome int

const (
	// OutcomeInserted means a new row was created.
	OutcomeInserted UpsertOutcome = iota
	// OutcomeUpdated means an existing row's rating/source changed.
	OutcomeUpdated
	// OutcomeSkipped means the row was left untouched.
	OutcomeSkipped
)

// Writer is the write side of the recommendation store.
type Writer interface {
	// UpsertRecommendation persists one scored track for a user.
	// Terminal rows are never overwritten; a uniqueness race reports
	// OutcomeSkipped rather than an error.
	UpsertRecommendation(ctx context.Context, userID, trackID uuid.UUID, rating float64, source string) (UpsertOutcome, error)
}
