// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// ErrTrackNotFound is returned when a track search yields no results.
var ErrTrackNotFound = errors.New("track not found")

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}

// CurrentUser returns the current user's Spotify ID and display name.
func (c *Client) CurrentUser(ctx context.Context) (*UserProfile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}
	return &UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
	}, nil
}
