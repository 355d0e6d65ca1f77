// Package playlist publishes the current recommendations to a Spotify
// playlist.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rayers1001/recommendations-ml-spotify/internal/db"
)

const (
	defaultSize         = 30
	playlistDescription = "Fresh picks based on your listening history"
)

// ErrNoRecommendations is returned when there is nothing to publish.
var ErrNoRecommendations = errors.New("no recommendations to publish")

// SpotifyPlaylists is the slice of the Spotify client the publisher needs.
type SpotifyPlaylists interface {
	FindPlaylist(ctx context.Context, name string) (string, error)
	CreatePlaylist(ctx context.Context, name, description string) (string, error)
	ReplacePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error
	SetPlaylistCover(ctx context.Context, playlistID string, image io.Reader) error
}

// Options configures playlist publishing.
type Options struct {
	Name      string // Playlist name to find or create
	CoverPath string // Optional JPEG cover image; skipped when missing
	Size      int    // Maximum tracks to publish (default 30)
}

// Report summarizes one publish run.
type Report struct {
	PlaylistID string
	Created    bool
	Tracks     int
	CoverSet   bool
}

// Service builds the recommendation playlist on Spotify.
type Service struct {
	db      *db.DB
	spotify SpotifyPlaylists
	opts    Options
	logger  zerolog.Logger
}

// New creates a playlist Service.
func New(database *db.DB, client SpotifyPlaylists, opts Options, logger zerolog.Logger) *Service {
	if opts.Size <= 0 {
		opts.Size = defaultSize
	}
	return &Service{
		db:      database,
		spotify: client,
		opts:    opts,
		logger:  logger.With().Str("service", "playlist").Logger(),
	}
}

// Run replaces the playlist contents with the user's top-rated open
// recommendations, ordered so tag themes play together. The playlist
// is created on first use and reused afterwards.
func (s *Service) Run(ctx context.Context, userID uuid.UUID) (*Report, error) {
	tracks, err := s.db.Recommendations().GetPlaylistTracks(ctx, userID, s.opts.Size)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNoRecommendations
	}

	tracks = OrderByTheme(tracks)

	report := &Report{Tracks: len(tracks)}

	playlistID, err := s.spotify.FindPlaylist(ctx, s.opts.Name)
	if err != nil {
		return nil, fmt.Errorf("finding playlist: %w", err)
	}
	if playlistID == "" {
		playlistID, err = s.spotify.CreatePlaylist(ctx, s.opts.Name, playlistDescription)
		if err != nil {
			return nil, fmt.Errorf("creating playlist: %w", err)
		}
		report.Created = true
		s.logger.Info().Str("playlist", s.opts.Name).Msg("created playlist")
	}
	report.PlaylistID = playlistID

	spotifyIDs := make([]string, len(tracks))
	for i, t := range tracks {
		spotifyIDs[i] = t.SpotifyID
	}
	if err := s.spotify.ReplacePlaylistTracks(ctx, playlistID, spotifyIDs); err != nil {
		return nil, fmt.Errorf("replacing playlist tracks: %w", err)
	}

	report.CoverSet = s.uploadCover(ctx, playlistID)

	s.logger.Info().
		Str("playlist_id", playlistID).
		Int("tracks", report.Tracks).
		Bool("created", report.Created).
		Msg("playlist published")

	return report, nil
}

// uploadCover sets the playlist cover image if one is configured.
// A missing or unreadable image is logged and skipped; the playlist
// itself is already published at this point.
func (s *Service) uploadCover(ctx context.Context, playlistID string) bool {
	if s.opts.CoverPath == "" {
		return false
	}

	f, err := os.Open(s.opts.CoverPath)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.opts.CoverPath).Msg("skipping cover upload")
		return false
	}
	defer f.Close()

	if err := s.spotify.SetPlaylistCover(ctx, playlistID, f); err != nil {
		s.logger.Warn().Err(err).Msg("cover upload failed")
		return false
	}
	return true
}
