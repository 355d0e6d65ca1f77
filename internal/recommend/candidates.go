package recommend

import (
	"slices"

	"github.com/google/uuid"
)

// Candidate is a track proposed by one strategy before scoring. The raw
// signal meaning depends on the strategy: overlapping tag count, summed
// inverse similarity rank, or normalized play count.
type Candidate struct {
	TrackID  uuid.UUID
	Strategy Strategy
	Signal   float64
}

// tagOverlapCandidates scores tracks from the candidate pool by how many
// of the user's favorite tags they carry. Pool entries with no overlap
// are dropped; the result is capped at max.
func tagOverlapCandidates(pool []TaggedTrack, favoriteTags []string, max int) []Candidate {
	favorites := make(map[string]struct{}, len(favoriteTags))
	for _, tag := range favoriteTags {
		favorites[tag] = struct{}{}
	}

	var candidates []Candidate
	for _, track := range pool {
		overlap := 0
		for _, tag := range dedupe(track.Tags) {
			if _, ok := favorites[tag]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			candidates = append(candidates, Candidate{
				TrackID:  track.TrackID,
				Strategy: StrategyTagOverlap,
				Signal:   float64(overlap),
			})
		}
	}
	return capCandidates(candidates, max)
}

// similarTrackCandidates scores tracks from the stored similar lists of
// the user's top played tracks. The signal is 1/rank within a source
// list, summed when a candidate appears under multiple sources. Tracks
// in the excluded set never become candidates.
func similarTrackCandidates(sources []HistoryEntry, lists map[uuid.UUID][]uuid.UUID, excluded map[uuid.UUID]bool, max int) []Candidate {
	signals := make(map[uuid.UUID]float64)
	for _, source := range sources {
		for rank, trackID := range lists[source.TrackID] {
			if excluded[trackID] {
				continue
			}
			signals[trackID] += 1.0 / float64(rank+1)
		}
	}

	candidates := make([]Candidate, 0, len(signals))
	for trackID, signal := range signals {
		candidates = append(candidates, Candidate{
			TrackID:  trackID,
			Strategy: StrategySimilar,
			Signal:   signal,
		})
	}
	return capCandidates(candidates, max)
}

// fallbackCandidates proposes the user's own top played tracks that have
// not been recommended before, with play count normalized against the
// user's maximum as the signal.
func fallbackCandidates(topTracks []HistoryEntry, recommended map[uuid.UUID]bool, max int) []Candidate {
	if len(topTracks) == 0 {
		return nil
	}

	maxPlays := topTracks[0].PlayCount
	for _, t := range topTracks {
		if t.PlayCount > maxPlays {
			maxPlays = t.PlayCount
		}
	}
	if maxPlays == 0 {
		maxPlays = 1
	}

	var candidates []Candidate
	for _, t := range topTracks {
		if recommended[t.TrackID] {
			continue
		}
		candidates = append(candidates, Candidate{
			TrackID:  t.TrackID,
			Strategy: StrategyTopTracks,
			Signal:   float64(t.PlayCount) / float64(maxPlays),
		})
	}
	return capCandidates(candidates, max)
}

// capCandidates orders candidates by signal desc (ties by track ID) and
// truncates to max.
func capCandidates(candidates []Candidate, max int) []Candidate {
	slices.SortFunc(candidates, func(a, b Candidate) int {
		if a.Signal != b.Signal {
			if a.Signal > b.Signal {
				return -1
			}
			return 1
		}
		return compareIDs(a.TrackID, b.TrackID)
	})
	if max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates
}
