package recommend

// Config holds recommendation pipeline parameters. An explicit struct is
// passed into New; there is no process-wide configuration.
type Config struct {
	TagSourceTracks int // top played tracks whose tags seed the tag profile
	TopTags         int // favorite tags used by the tag-overlap strategy
	SimilarSources  int // top played tracks whose similar lists are consulted
	MaxPerStrategy  int // candidate cap per strategy
	MinCandidates   int // below this, the top-tracks fallback kicks in
	PlaylistSize    int // final recommendation list cap

	// Weights combines per-strategy signals; missing strategies get 0.
	Weights map[Strategy]float64
}

// DefaultConfig returns the recommended defaults: equal strategy weights,
// 20 candidates per strategy, a 30 track playlist.
func DefaultConfig() Config {
	return Config{
		TagSourceTracks: 10,
		TopTags:         5,
		SimilarSources:  5,
		MaxPerStrategy:  20,
		MinCandidates:   5,
		PlaylistSize:    30,
		Weights: map[Strategy]float64{
			StrategyTagOverlap: 1.0,
			StrategySimilar:    1.0,
			StrategyTopTracks:  1.0,
		},
	}
}

// withDefaults fills zero values with defaults so a partially filled
// Config behaves sensibly.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TagSourceTracks <= 0 {
		c.TagSourceTracks = def.TagSourceTracks
	}
	if c.TopTags <= 0 {
		c.TopTags = def.TopTags
	}
	if c.SimilarSources <= 0 {
		c.SimilarSources = def.SimilarSources
	}
	if c.MaxPerStrategy <= 0 {
		c.MaxPerStrategy = def.MaxPerStrategy
	}
	if c.MinCandidates <= 0 {
		c.MinCandidates = def.MinCandidates
	}
	if c.PlaylistSize <= 0 {
		c.PlaylistSize = def.PlaylistSize
	}
	if len(c.Weights) == 0 {
		c.Weights = def.Weights
	}
	return c
}
