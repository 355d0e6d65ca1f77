package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service runs the full recommendation pipeline for one user: aggregate
// history, generate candidates per strategy, score and rank, persist.
type Service struct {
	store  Store
	writer Writer
	cfg    Config
	logger zerolog.Logger
}

// New creates a recommendation service. Zero fields of cfg fall back to
// DefaultConfig values.
func New(store Store, writer Writer, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		writer: writer,
		cfg:    cfg.withDefaults(),
		logger: logger.With().Str("service", "recommend").Logger(),
	}
}

// WriteResult counts what persisting the final set did.
type WriteResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

// RunResult is the outcome of one recommendation run.
type RunResult struct {
	Recommendations []ScoredTrack
	Write           WriteResult
}

// Run executes the pipeline for a user. A user with no listening history
// yields an empty result, not an error; store failures are propagated
// unchanged.
func (s *Service) Run(ctx context.Context, userID uuid.UUID) (*RunResult, error) {
	history, err := s.store.GetListeningHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading listening history: %w", err)
	}

	historyIDs := make([]uuid.UUID, len(history))
	for i, h := range history {
		historyIDs[i] = h.TrackID
	}

	tags, err := s.store.GetTagsForTracks(ctx, historyIDs)
	if err != nil {
		return nil, fmt.Errorf("loading track tags: %w", err)
	}

	profile, err := AggregateHistory(history, tags, s.cfg.TagSourceTracks)
	if errors.Is(err, ErrEmptyHistory) {
		// Valid silent outcome; the caller may fall back to provider defaults.
		s.logger.Info().Str("user_id", userID.String()).Msg("no listening history, skipping run")
		return &RunResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetExistingRecommendations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading existing recommendations: %w", err)
	}

	// Tracks already in history or already recommended never become
	// candidates; terminal rows are additionally barred from resurfacing.
	excluded := make(map[uuid.UUID]bool, len(history)+len(existing))
	recommended := make(map[uuid.UUID]bool, len(existing))
	terminal := make(map[uuid.UUID]bool)
	for _, id := range historyIDs {
		excluded[id] = true
	}
	for _, rec := range existing {
		excluded[rec.TrackID] = true
		recommended[rec.TrackID] = true
		if rec.Terminal() {
			terminal[rec.TrackID] = true
		}
	}

	candidates, err := s.generateCandidates(ctx, profile, excluded, recommended)
	if err != nil {
		return nil, err
	}

	ranked := Rank(candidates, s.cfg.Weights, terminal, s.cfg.PlaylistSize)
	s.logger.Info().
		Int("candidates", len(candidates)).
		Int("ranked", len(ranked)).
		Msg("recommendations scored")

	result := &RunResult{Recommendations: ranked}
	for _, rec := range ranked {
		outcome, err := s.writer.UpsertRecommendation(ctx, userID, rec.TrackID, rec.Rating, string(rec.Source))
		if err != nil {
			return nil, fmt.Errorf("persisting recommendation for track %s: %w", rec.TrackID, err)
		}
		switch outcome {
		case OutcomeInserted:
			result.Write.Inserted++
		case OutcomeUpdated:
			result.Write.Updated++
		default:
			result.Write.Skipped++
		}
	}

	s.logger.Info().
		Int("inserted", result.Write.Inserted).
		Int("updated", result.Write.Updated).
		Int("skipped", result.Write.Skipped).
		Msg("recommendations persisted")
	return result, nil
}

// generateCandidates runs the tag-overlap and similar-track strategies,
// adding the top-tracks fallback only when they jointly come up short.
func (s *Service) generateCandidates(ctx context.Context, profile *Profile, excluded, recommended map[uuid.UUID]bool) ([]Candidate, error) {
	favoriteTags := profile.TopTagNames(s.cfg.TopTags)

	var pool []TaggedTrack
	if len(favoriteTags) > 0 {
		excludeIDs := make([]uuid.UUID, 0, len(excluded))
		for id := range excluded {
			excludeIDs = append(excludeIDs, id)
		}
		var err error
		pool, err = s.store.GetTaggedTracks(ctx, favoriteTags, excludeIDs)
		if err != nil {
			return nil, fmt.Errorf("loading tagged tracks: %w", err)
		}
	}
	tagCandidates := tagOverlapCandidates(pool, favoriteTags, s.cfg.MaxPerStrategy)

	sources := profile.TopTracks
	if len(sources) > s.cfg.SimilarSources {
		sources = sources[:s.cfg.SimilarSources]
	}
	lists := make(map[uuid.UUID][]uuid.UUID, len(sources))
	for _, source := range sources {
		similar, err := s.store.GetSimilarTracks(ctx, source.TrackID)
		if err != nil {
			return nil, fmt.Errorf("loading similar tracks for %s: %w", source.TrackID, err)
		}
		lists[source.TrackID] = similar
	}
	similarCandidates := similarTrackCandidates(sources, lists, excluded, s.cfg.MaxPerStrategy)

	candidates := append(tagCandidates, similarCandidates...)

	if len(candidates) < s.cfg.MinCandidates {
		fallback := fallbackCandidates(profile.TopTracks, recommended, s.cfg.MaxPerStrategy)
		s.logger.Debug().
			Int("found", len(candidates)).
			Int("fallback", len(fallback)).
			Msg("falling back to top played tracks")
		candidates = append(candidates, fallback...)
	}
	return candidates, nil
}
