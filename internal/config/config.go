// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"os"
)

const (
	defaultPlaylistName = "Discover by History"
	defaultLogLevel     = "info"
)

var (
	// ErrMissingDatabaseURL is returned when DATABASE_URL is not set.
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL environment variable")

	// ErrMissingSpotifyCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
	ErrMissingSpotifyCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")
)

// Config holds settings shared across the pipeline commands.
type Config struct {
	DatabaseURL    string
	SpotifyID      string
	SpotifySecret  string
	PlaylistName   string
	CoverImagePath string
	LogLevel       string
}

// Load reads configuration from environment variables.
// DATABASE_URL, SPOTIFY_ID and SPOTIFY_SECRET are required;
// the rest fall back to defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SpotifyID:      os.Getenv("SPOTIFY_ID"),
		SpotifySecret:  os.Getenv("SPOTIFY_SECRET"),
		PlaylistName:   os.Getenv("PLAYLIST_NAME"),
		CoverImagePath: os.Getenv("PLAYLIST_COVER_PATH"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	if cfg.SpotifyID == "" || cfg.SpotifySecret == "" {
		return Config{}, ErrMissingSpotifyCredentials
	}

	if cfg.PlaylistName == "" {
		cfg.PlaylistName = defaultPlaylistName
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	return cfg, nil
}
