package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

const maxTracksPerLookup = 50

// RecentlyPlayed retrieves the user's recently played tracks, newest
// first. The recently-played feed only carries simplified track objects,
// so popularity is filled in with a follow-up full-track lookup.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]PlayedTrack, error) {
	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{Limit: spotify.Numeric(limit)})
	if err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	played := make([]PlayedTrack, len(items))
	ids := make([]spotify.ID, len(items))
	for i, item := range items {
		played[i] = PlayedTrack{
			SpotifyID:  item.Track.ID.String(),
			Name:       item.Track.Name,
			Artist:     joinArtists(item.Track.Artists),
			DurationMs: int(item.Track.Duration),
			PlayedAt:   item.PlayedAt,
		}
		ids[i] = item.Track.ID
	}

	popularity, err := c.trackPopularity(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range played {
		played[i].Popularity = popularity[played[i].SpotifyID]
	}
	return played, nil
}

// trackPopularity looks up popularity for a set of track IDs in batches.
func (c *Client) trackPopularity(ctx context.Context, ids []spotify.ID) (map[string]int, error) {
	popularity := make(map[string]int, len(ids))

	for i := 0; i < len(ids); i += maxTracksPerLookup {
		end := min(i+maxTracksPerLookup, len(ids))
		tracks, err := c.api.GetTracks(ctx, ids[i:end])
		if err != nil {
			return nil, fmt.Errorf("fetching track details (batch %d-%d): %w", i+1, end, err)
		}
		for _, track := range tracks {
			if track != nil {
				popularity[track.ID.String()] = int(track.Popularity)
			}
		}
	}
	return popularity, nil
}
