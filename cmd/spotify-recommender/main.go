// Command spotify-recommender runs the listening-history recommendation
// pipeline: collect plays, enrich tracks via Last.fm, score
// recommendations and publish them to a Spotify playlist.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rayers1001/recommendations-ml-spotify/internal/auth"
	"github.com/rayers1001/recommendations-ml-spotify/internal/collector"
	"github.com/rayers1001/recommendations-ml-spotify/internal/config"
	"github.com/rayers1001/recommendations-ml-spotify/internal/db"
	"github.com/rayers1001/recommendations-ml-spotify/internal/lastfm"
	"github.com/rayers1001/recommendations-ml-spotify/internal/metadata"
	"github.com/rayers1001/recommendations-ml-spotify/internal/playlist"
	"github.com/rayers1001/recommendations-ml-spotify/internal/recommend"
	spotifyclient "github.com/rayers1001/recommendations-ml-spotify/internal/spotify"
)

const usage = `Usage: spotify-recommender <command>

Commands:
  collect    Record recently played tracks
  enrich     Fetch Last.fm tags and similar tracks for stored tracks
  recommend  Score and store track recommendations
  playlist   Publish recommendations to a Spotify playlist
  run        Full pipeline: collect, enrich, recommend, playlist
  feedback   Rate a recommended track: feedback <spotify-track-id> <played|like|skip>
  logout     Remove the cached Spotify token`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		return errors.New("missing command")
	}
	command := os.Args[1]

	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if command == "logout" {
		authenticator, err := auth.New(cfg.SpotifyID, cfg.SpotifySecret)
		if err != nil {
			return err
		}
		if err := authenticator.Logout(); err != nil {
			return fmt.Errorf("removing cached token: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	}

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	switch command {
	case "collect":
		return app.collect(ctx)
	case "enrich":
		return app.enrich(ctx)
	case "recommend":
		return app.recommend(ctx)
	case "playlist":
		return app.playlist(ctx)
	case "run":
		return app.pipeline(ctx)
	case "feedback":
		if len(os.Args) < 4 {
			return errors.New("usage: spotify-recommender feedback <spotify-track-id> <played|like|skip>")
		}
		return app.feedback(ctx, os.Args[2], os.Args[3])
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

// app wires the shared dependencies for all pipeline commands.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	db      *db.DB
	spotify *spotifyclient.Client
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("preparing schema: %w", err)
	}

	authenticator, err := auth.New(cfg.SpotifyID, cfg.SpotifySecret)
	if err != nil {
		database.Close()
		return nil, err
	}
	client, err := authenticator.Authenticate(ctx)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("authenticating with Spotify: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      database,
		spotify: spotifyclient.New(client),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

func (a *app) collect(ctx context.Context) error {
	svc := collector.New(a.db, a.spotify, a.logger)
	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Collected %d tracks (%d new plays, %d counted, %d already recorded)\n",
		report.TracksSeen, report.NewPlays, report.CountedPlays, report.IgnoredPlays)
	return nil
}

func (a *app) enrich(ctx context.Context) error {
	lastfmCfg, err := lastfm.LoadConfig()
	if err != nil {
		return err
	}

	svc := metadata.New(a.db, lastfm.NewClient(lastfmCfg), a.spotify, a.logger)
	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Enriched %d of %d tracks (%d failed)\n",
		report.Enriched, report.Processed, report.Failed)
	return nil
}

func (a *app) recommend(ctx context.Context) error {
	userID, err := a.currentUserID(ctx)
	if err != nil {
		return err
	}

	store := a.db.RecommendStore()
	svc := recommend.New(store, store, recommend.DefaultConfig(), a.logger)
	result, err := svc.Run(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d recommendations (%d new, %d updated, %d kept)\n",
		len(result.Recommendations),
		result.Write.Inserted, result.Write.Updated, result.Write.Skipped)
	return nil
}

func (a *app) playlist(ctx context.Context) error {
	userID, err := a.currentUserID(ctx)
	if err != nil {
		return err
	}

	svc := playlist.New(a.db, a.spotify, playlist.Options{
		Name:      a.cfg.PlaylistName,
		CoverPath: a.cfg.CoverImagePath,
	}, a.logger)

	report, err := svc.Run(ctx, userID)
	if errors.Is(err, playlist.ErrNoRecommendations) {
		fmt.Println("No recommendations to publish; run `spotify-recommender recommend` first.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Published %d tracks to playlist %q\n", report.Tracks, a.cfg.PlaylistName)
	return nil
}

// feedback records the user's verdict on a recommended track. Played
// and rated recommendations become terminal and never resurface.
func (a *app) feedback(ctx context.Context, spotifyTrackID, verdict string) error {
	userID, err := a.currentUserID(ctx)
	if err != nil {
		return err
	}

	track, err := a.db.Tracks().GetBySpotifyID(ctx, spotifyTrackID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("unknown track: %s", spotifyTrackID)
	}
	if err != nil {
		return fmt.Errorf("looking up track: %w", err)
	}

	switch verdict {
	case "played":
		err = a.db.Recommendations().MarkPlayed(ctx, userID, track.ID)
	case "like", "skip":
		err = a.db.Recommendations().SetFeedback(ctx, userID, track.ID, verdict)
	default:
		return fmt.Errorf("unknown verdict %q, want played, like or skip", verdict)
	}
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("track %s was never recommended", spotifyTrackID)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %q for %s - %s\n", verdict, track.Artist, track.Name)
	return nil
}

// pipeline runs every stage in order, stopping at the first failure.
func (a *app) pipeline(ctx context.Context) error {
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"collect", a.collect},
		{"enrich", a.enrich},
		{"recommend", a.recommend},
		{"playlist", a.playlist},
	}

	for _, stage := range stages {
		a.logger.Info().Str("stage", stage.name).Msg("running pipeline stage")
		if err := stage.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", stage.name, err)
		}
	}
	return nil
}

// currentUserID resolves the authenticated Spotify user to a stored user row.
func (a *app) currentUserID(ctx context.Context) (uuid.UUID, error) {
	profile, err := a.spotify.CurrentUser(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fetching current user: %w", err)
	}

	user, err := a.db.Users().GetBySpotifyID(ctx, profile.ID)
	if errors.Is(err, db.ErrNotFound) {
		return uuid.Nil, errors.New("no listening history yet; run `spotify-recommender collect` first")
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("looking up user: %w", err)
	}
	return user.ID, nil
}

// newLogger builds the console logger used by all commands.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
