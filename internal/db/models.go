package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents a Spotify listener tracked by the pipeline.
type User struct {
	ID          uuid.UUID
	SpotifyID   string
	DisplayName string
	CreatedAt   time.Time
}

// Track represents a Spotify track.
// Identity fields (SpotifyID, Name, Artist) are immutable once stored;
// Popularity is refreshed on later collection runs.
type Track struct {
	ID         uuid.UUID
	SpotifyID  string
	Name       string
	Artist     string
	Popularity *int // nullable
	DurationMs *int // nullable
	CreatedAt  time.Time
}

// TrackTag represents a Last.fm tag attached to a track.
// Position preserves the Last.fm top-tags ordering.
type TrackTag struct {
	TrackID   uuid.UUID
	TagName   string
	Position  int
	FetchedAt time.Time
}

// SimilarTrack links a track to one entry of its ordered similar-track list.
// Position is 1-based; lower means more similar.
type SimilarTrack struct {
	TrackID        uuid.UUID
	Position       int
	SimilarTrackID uuid.UUID
	FetchedAt      time.Time
}

// TrackMetadata holds Last.fm track-level metadata.
// Presence of a row marks the track as enriched.
type TrackMetadata struct {
	TrackID     uuid.UUID
	Listeners   int64
	Playcount   int64
	WikiSummary *string // nullable
	UpdatedAt   time.Time
}

// ListeningHistory aggregates plays of one track by one user.
// Unique per (user, track); play_count only ever increases.
type ListeningHistory struct {
	UserID        uuid.UUID
	TrackID       uuid.UUID
	PlayCount     int
	FirstPlayedAt time.Time
	LastPlayedAt  time.Time
}

// FeedbackSkip is the feedback value that marks a recommendation as
// rejected; skipped tracks never resurface in later runs.
const FeedbackSkip = "skip"

// Recommendation represents a scored track proposal for a user.
// Unique per (user, track). Once IsPlayed is set or UserFeedback is
// recorded the row is terminal and never overwritten by regeneration.
type Recommendation struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	TrackID      uuid.UUID
	Rating       float64
	Source       string
	IsPlayed     bool
	UserFeedback *string // nullable, e.g. "like" or "skip"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Terminal reports whether the recommendation has been played or rated
// and so must not be overwritten.
func (r *Recommendation) Terminal() bool {
	return r.IsPlayed || r.UserFeedback != nil
}

// PlaylistTrack is a recommendation joined with the data needed to
// publish it to a Spotify playlist.
type PlaylistTrack struct {
	TrackID   uuid.UUID
	SpotifyID string
	Name      string
	Artist    string
	Rating    float64
	Tags      []string
}
