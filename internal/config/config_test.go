package config

import (
	"errors"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    Config
		wantErr error
	}{
		{
			name: "all variables set",
			env: map[string]string{
				"DATABASE_URL":        "postgres://localhost/recs",
				"SPOTIFY_ID":          "client-id",
				"SPOTIFY_SECRET":      "client-secret",
				"PLAYLIST_NAME":       "My Picks",
				"PLAYLIST_COVER_PATH": "/tmp/cover.jpg",
				"LOG_LEVEL":           "debug",
			},
			want: Config{
				DatabaseURL:    "postgres://localhost/recs",
				SpotifyID:      "client-id",
				SpotifySecret:  "client-secret",
				PlaylistName:   "My Picks",
				CoverImagePath: "/tmp/cover.jpg",
				LogLevel:       "debug",
			},
		},
		{
			name: "defaults applied",
			env: map[string]string{
				"DATABASE_URL":   "postgres://localhost/recs",
				"SPOTIFY_ID":     "client-id",
				"SPOTIFY_SECRET": "client-secret",
			},
			want: Config{
				DatabaseURL:   "postgres://localhost/recs",
				SpotifyID:     "client-id",
				SpotifySecret: "client-secret",
				PlaylistName:  defaultPlaylistName,
				LogLevel:      defaultLogLevel,
			},
		},
		{
			name: "missing database url",
			env: map[string]string{
				"SPOTIFY_ID":     "client-id",
				"SPOTIFY_SECRET": "client-secret",
			},
			wantErr: ErrMissingDatabaseURL,
		},
		{
			name: "missing spotify secret",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/recs",
				"SPOTIFY_ID":   "client-id",
			},
			wantErr: ErrMissingSpotifyCredentials,
		},
	}

	vars := []string{
		"DATABASE_URL", "SPOTIFY_ID", "SPOTIFY_SECRET",
		"PLAYLIST_NAME", "PLAYLIST_COVER_PATH", "LOG_LEVEL",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range vars {
				if value, ok := tt.env[v]; ok {
					t.Setenv(v, value)
				} else {
					t.Setenv(v, "")
				}
			}

			cfg, err := Load()

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if cfg != tt.want {
				t.Errorf("Load() = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}
