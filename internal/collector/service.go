// Package collector ingests the user's recently played tracks into the
// local database.
package collector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rayers1001/recommendations-ml-spotify/internal/db"
	"github.com/rayers1001/recommendations-ml-spotify/internal/spotify"
)

// recentLimit is the maximum the Spotify recently-played endpoint returns.
const recentLimit = 50

// SpotifyHistory is the slice of the Spotify client the collector needs.
type SpotifyHistory interface {
	CurrentUser(ctx context.Context) (*spotify.UserProfile, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]spotify.PlayedTrack, error)
}

// Report summarizes one collection run.
type Report struct {
	UserID       uuid.UUID
	TracksSeen   int
	NewPlays     int
	CountedPlays int
	IgnoredPlays int
}

// Service pulls listening history from Spotify and records it.
type Service struct {
	db      *db.DB
	spotify SpotifyHistory
	logger  zerolog.Logger
}

// New creates a collector Service.
func New(database *db.DB, client SpotifyHistory, logger zerolog.Logger) *Service {
	return &Service{
		db:      database,
		spotify: client,
		logger:  logger.With().Str("service", "collector").Logger(),
	}
}

// Run fetches the recently played feed and upserts tracks and play
// counts. Plays already recorded in an earlier run are ignored, so
// running repeatedly over the same feed is safe.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	profile, err := s.spotify.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}

	user := &db.User{SpotifyID: profile.ID, DisplayName: profile.DisplayName}
	if err := s.db.Users().Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	played, err := s.spotify.RecentlyPlayed(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", err)
	}

	report := &Report{UserID: user.ID}
	if len(played) == 0 {
		s.logger.Info().Msg("no recently played tracks")
		return report, nil
	}

	tracks := dedupeTracks(played)
	if err := s.db.Tracks().UpsertBatch(ctx, tracks); err != nil {
		return nil, fmt.Errorf("upserting tracks: %w", err)
	}
	report.TracksSeen = len(tracks)

	idBySpotify := make(map[string]uuid.UUID, len(tracks))
	for _, t := range tracks {
		idBySpotify[t.SpotifyID] = t.ID
	}

	for _, p := range played {
		trackID, ok := idBySpotify[p.SpotifyID]
		if !ok {
			continue
		}

		outcome, err := s.db.History().RecordPlay(ctx, user.ID, trackID, p.PlayedAt)
		if err != nil {
			return nil, fmt.Errorf("recording play for %s: %w", p.SpotifyID, err)
		}

		switch outcome {
		case db.PlayCreated:
			report.NewPlays++
		case db.PlayCounted:
			report.CountedPlays++
		case db.PlayIgnored:
			report.IgnoredPlays++
		}
	}

	s.logger.Info().
		Int("tracks", report.TracksSeen).
		Int("new_plays", report.NewPlays).
		Int("counted_plays", report.CountedPlays).
		Int("ignored_plays", report.IgnoredPlays).
		Msg("collection complete")

	return report, nil
}

// dedupeTracks collapses repeated plays of the same track into one
// upsert row, keeping the first occurrence's metadata.
func dedupeTracks(played []spotify.PlayedTrack) []db.Track {
	seen := make(map[string]bool, len(played))
	tracks := make([]db.Track, 0, len(played))
	for _, p := range played {
		if seen[p.SpotifyID] {
			continue
		}
		seen[p.SpotifyID] = true

		popularity := p.Popularity
		duration := p.DurationMs
		tracks = append(tracks, db.Track{
			SpotifyID:  p.SpotifyID,
			Name:       p.Name,
			Artist:     p.Artist,
			Popularity: &popularity,
			DurationMs: &duration,
		})
	}
	return tracks
}
