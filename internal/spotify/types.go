package spotify

import (
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
)

// UserProfile is the current user's identity.
type UserProfile struct {
	ID          string
	DisplayName string
}

// PlayedTrack is one entry of the user's recently-played feed with full
// track metadata attached.
type PlayedTrack struct {
	SpotifyID  string
	Name       string
	Artist     string // Comma-separated artist names
	Popularity int
	DurationMs int
	PlayedAt   time.Time
}

// FoundTrack is a track resolved through Spotify search.
type FoundTrack struct {
	SpotifyID  string
	Name       string
	Artist     string
	Popularity int
	DurationMs int
}

// joinArtists renders an artist list the way the rest of the pipeline
// stores it.
func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// convertFullTrack converts a Spotify FullTrack to a FoundTrack.
func convertFullTrack(track spotify.FullTrack) FoundTrack {
	return FoundTrack{
		SpotifyID:  track.ID.String(),
		Name:       track.Name,
		Artist:     joinArtists(track.Artists),
		Popularity: int(track.Popularity),
		DurationMs: int(track.Duration),
	}
}
