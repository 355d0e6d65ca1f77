// Package metadata enriches stored tracks with Last.fm tags, similar
// tracks and listening statistics.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rayers1001/recommendations-ml-spotify/internal/db"
	"github.com/rayers1001/recommendations-ml-spotify/internal/lastfm"
	"github.com/rayers1001/recommendations-ml-spotify/internal/spotify"
)

const (
	// batchSize is how many unenriched tracks one run processes.
	batchSize = 50

	// similarLimit is how many similar tracks to request per track.
	similarLimit = 10

	// requestInterval paces Last.fm calls to stay under its rate limit.
	requestInterval = time.Second
)

// LastfmClient is the slice of the Last.fm client the enricher needs.
type LastfmClient interface {
	GetTrackInfo(ctx context.Context, artist, track string) (*lastfm.TrackInfo, error)
	GetSimilarTracks(ctx context.Context, artist, track string, limit int) ([]lastfm.SimilarTrack, error)
}

// SpotifySearch resolves a track name and artist to a Spotify track.
type SpotifySearch interface {
	SearchTrack(ctx context.Context, name, artist string) (*spotify.FoundTrack, error)
}

// Report summarizes one enrichment run.
type Report struct {
	Processed int
	Enriched  int
	Failed    int
}

// Service fetches Last.fm metadata for tracks that don't have any yet.
type Service struct {
	db      *db.DB
	lastfm  LastfmClient
	spotify SpotifySearch
	logger  zerolog.Logger
}

// New creates a metadata Service.
func New(database *db.DB, lastfmClient LastfmClient, search SpotifySearch, logger zerolog.Logger) *Service {
	return &Service{
		db:      database,
		lastfm:  lastfmClient,
		spotify: search,
		logger:  logger.With().Str("service", "metadata").Logger(),
	}
}

// Run enriches one batch of tracks without metadata. A track that
// fails is logged and skipped; it stays unenriched and will be picked
// up by a later run.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	tracks, err := s.db.Tracks().GetWithoutMetadata(ctx, batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetching unenriched tracks: %w", err)
	}

	report := &Report{}
	if len(tracks) == 0 {
		s.logger.Info().Msg("no tracks need enrichment")
		return report, nil
	}

	for i, track := range tracks {
		if i > 0 {
			if err := pace(ctx, requestInterval); err != nil {
				return report, err
			}
		}

		report.Processed++
		if err := s.enrichTrack(ctx, track); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			report.Failed++
			s.logger.Warn().
				Err(err).
				Str("track", track.Name).
				Str("artist", track.Artist).
				Msg("enrichment failed, skipping track")
			continue
		}
		report.Enriched++
	}

	s.logger.Info().
		Int("processed", report.Processed).
		Int("enriched", report.Enriched).
		Int("failed", report.Failed).
		Msg("enrichment complete")

	return report, nil
}

// enrichTrack fetches info and similar tracks for one track and stores
// tags, similar links and metadata.
func (s *Service) enrichTrack(ctx context.Context, track db.Track) error {
	fetchedAt := time.Now()

	info, err := s.lastfm.GetTrackInfo(ctx, track.Artist, track.Name)
	if err != nil {
		return fmt.Errorf("fetching track info: %w", err)
	}

	similar, err := s.lastfm.GetSimilarTracks(ctx, track.Artist, track.Name, similarLimit)
	if err != nil {
		return fmt.Errorf("fetching similar tracks: %w", err)
	}

	if err := s.storeTags(ctx, track.ID, info.Tags, fetchedAt); err != nil {
		return err
	}
	if err := s.storeSimilar(ctx, track.ID, similar, fetchedAt); err != nil {
		return err
	}

	meta := &db.TrackMetadata{
		TrackID:   track.ID,
		Listeners: info.Listeners,
		Playcount: info.Playcount,
		UpdatedAt: fetchedAt,
	}
	if info.WikiSummary != "" {
		summary := info.WikiSummary
		meta.WikiSummary = &summary
	}
	if err := s.db.Metadata().Upsert(ctx, meta); err != nil {
		return fmt.Errorf("storing metadata: %w", err)
	}

	return nil
}

func (s *Service) storeTags(ctx context.Context, trackID uuid.UUID, names []string, fetchedAt time.Time) error {
	tags := make([]db.TrackTag, len(names))
	for i, name := range names {
		tags[i] = db.TrackTag{
			TrackID:   trackID,
			TagName:   name,
			Position:  i + 1,
			FetchedAt: fetchedAt,
		}
	}
	if err := s.db.Tags().ReplaceForTrack(ctx, trackID, tags); err != nil {
		return fmt.Errorf("storing tags: %w", err)
	}
	return nil
}

// storeSimilar resolves Last.fm similar tracks to Spotify tracks and
// replaces the stored similar list. Tracks Spotify can't find are
// dropped; positions stay in Last.fm's similarity order.
func (s *Service) storeSimilar(ctx context.Context, trackID uuid.UUID, similar []lastfm.SimilarTrack, fetchedAt time.Time) error {
	links := make([]db.SimilarTrack, 0, len(similar))
	position := 0

	for _, cand := range similar {
		found, err := s.spotify.SearchTrack(ctx, cand.Name, cand.Artist)
		if errors.Is(err, spotify.ErrTrackNotFound) {
			s.logger.Debug().
				Str("track", cand.Name).
				Str("artist", cand.Artist).
				Msg("similar track not on Spotify, dropping")
			continue
		}
		if err != nil {
			return fmt.Errorf("resolving similar track %q: %w", cand.Name, err)
		}

		popularity := found.Popularity
		duration := found.DurationMs
		similarTrack := &db.Track{
			SpotifyID:  found.SpotifyID,
			Name:       found.Name,
			Artist:     found.Artist,
			Popularity: &popularity,
			DurationMs: &duration,
		}
		if err := s.db.Tracks().Upsert(ctx, similarTrack); err != nil {
			return fmt.Errorf("upserting similar track %q: %w", found.Name, err)
		}

		// A track can appear in its own similar list under a slightly
		// different name; skip self-links.
		if similarTrack.ID == trackID {
			continue
		}

		position++
		links = append(links, db.SimilarTrack{
			TrackID:        trackID,
			Position:       position,
			SimilarTrackID: similarTrack.ID,
			FetchedAt:      fetchedAt,
		})
	}

	if err := s.db.Similar().ReplaceForTrack(ctx, trackID, links); err != nil {
		return fmt.Errorf("storing similar tracks: %w", err)
	}
	return nil
}

// pace waits for the request interval or returns early when the
// context is cancelled.
func pace(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
