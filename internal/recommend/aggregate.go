// Package recommend derives tag and similarity based track recommendations
// from a user's aggregated listening history.
package recommend

import (
	"bytes"
	"errors"
	"slices"

	"github.com/google/uuid"
)

// ErrEmptyHistory is returned when a user has no listening history rows.
var ErrEmptyHistory = errors.New("no listening history")

// TagWeight is a tag with its accumulated play weight.
type TagWeight struct {
	Tag    string
	Weight int
}

// Profile is the aggregated view of a user's listening history: tracks
// ordered by play count and tags ordered by play-weighted frequency.
type Profile struct {
	TopTracks  []HistoryEntry
	TagWeights []TagWeight
}

// AggregateHistory reduces listening history rows into a Profile.
// Tag weight is the sum of play_count over the top tagSourceTracks tracks
// carrying that tag. Inputs are not mutated.
// Returns ErrEmptyHistory when there are no rows.
func AggregateHistory(history []HistoryEntry, tags map[uuid.UUID][]string, tagSourceTracks int) (*Profile, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}

	top := make([]HistoryEntry, len(history))
	copy(top, history)
	slices.SortFunc(top, compareHistory)

	n := min(tagSourceTracks, len(top))
	weights := make(map[string]int)
	for _, entry := range top[:n] {
		for _, tag := range dedupe(tags[entry.TrackID]) {
			weights[tag] += entry.PlayCount
		}
	}

	tagWeights := make([]TagWeight, 0, len(weights))
	for tag, weight := range weights {
		tagWeights = append(tagWeights, TagWeight{Tag: tag, Weight: weight})
	}
	slices.SortFunc(tagWeights, func(a, b TagWeight) int {
		if a.Weight != b.Weight {
			return b.Weight - a.Weight
		}
		return compareStrings(a.Tag, b.Tag)
	})

	return &Profile{TopTracks: top, TagWeights: tagWeights}, nil
}

// TopTagNames returns the names of the n heaviest tags.
func (p *Profile) TopTagNames(n int) []string {
	n = min(n, len(p.TagWeights))
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = p.TagWeights[i].Tag
	}
	return names
}

// compareHistory orders by play count desc, then most recent
// last_played_at, then track ID for determinism.
func compareHistory(a, b HistoryEntry) int {
	if a.PlayCount != b.PlayCount {
		return b.PlayCount - a.PlayCount
	}
	if !a.LastPlayedAt.Equal(b.LastPlayedAt) {
		return b.LastPlayedAt.Compare(a.LastPlayedAt)
	}
	return compareIDs(a.TrackID, b.TrackID)
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// dedupe returns the distinct values of s, preserving first occurrence order.
func dedupe(s []string) []string {
	seen := make(map[string]struct{}, len(s))
	var out []string
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
