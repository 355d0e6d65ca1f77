package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// SearchTrack resolves a (name, artist) pair to a Spotify track.
// Returns ErrTrackNotFound when the search yields no results.
func (c *Client) SearchTrack(ctx context.Context, name, artist string) (*FoundTrack, error) {
	query := fmt.Sprintf("track:%q artist:%q", name, artist)

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("searching track: %w", err)
	}

	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %s by %s", ErrTrackNotFound, name, artist)
	}

	found := convertFullTrack(result.Tracks.Tracks[0])
	return &found, nil
}
