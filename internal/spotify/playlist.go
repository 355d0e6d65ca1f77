package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zmb3/spotify/v2"
)

const maxTracksPerRequest = 100

// FindPlaylist searches the user's playlists for one with the given
// name. Returns an empty ID when no such playlist exists.
func (c *Client) FindPlaylist(ctx context.Context, name string) (string, error) {
	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return "", fmt.Errorf("fetching playlists: %w", err)
	}

	for {
		for _, playlist := range page.Playlists {
			if playlist.Name == name {
				return playlist.ID.String(), nil
			}
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("fetching next playlist page: %w", err)
		}
	}
}

// CreatePlaylist creates a new public playlist for the current user.
// Returns the playlist ID.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, true, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}
	return playlist.ID.String(), nil
}

// ReplacePlaylistTracks replaces the playlist contents with the given
// tracks, batching beyond Spotify's 100-track request limit.
func (c *Client) ReplacePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	first := min(maxTracksPerRequest, len(ids))
	if err := c.api.ReplacePlaylistTracks(ctx, spotify.ID(playlistID), ids[:first]...); err != nil {
		return fmt.Errorf("replacing playlist tracks: %w", err)
	}

	for i := first; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[i:end]...); err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
	}
	return nil
}

// SetPlaylistCover uploads a JPEG cover image for the playlist.
func (c *Client) SetPlaylistCover(ctx context.Context, playlistID string, image io.Reader) error {
	if err := c.api.SetPlaylistImage(ctx, spotify.ID(playlistID), image); err != nil {
		return fmt.Errorf("uploading playlist cover: %w", err)
	}
	return nil
}
