package recommend

import (
	"slices"

	"github.com/google/uuid"
)

// ScoredTrack is a final, ranked recommendation.
type ScoredTrack struct {
	TrackID uuid.UUID
	Rating  float64 // 0-1 confidence after min-max scaling
	Source  Strategy
}

// Rank merges candidate lists across strategies and produces the final
// ordered recommendation set.
//
// Per-strategy signals are first normalized against that strategy's
// maximum so the scales are comparable, then combined as a weighted sum;
// a track proposed by several strategies always scores at least as high
// as under any single one. Combined scores are min-max scaled into a 0-1
// rating over this run's candidates. Tracks in the terminal set are
// excluded. Ordering is rating desc with a stable track ID tie-break,
// truncated to size.
func Rank(candidates []Candidate, weights map[Strategy]float64, terminal map[uuid.UUID]bool, size int) []ScoredTrack {
	if len(candidates) == 0 {
		return nil
	}

	// Max raw signal per strategy for normalization.
	maxSignal := make(map[Strategy]float64)
	for _, c := range candidates {
		if c.Signal > maxSignal[c.Strategy] {
			maxSignal[c.Strategy] = c.Signal
		}
	}

	// Weighted per-strategy contributions per track.
	type merged struct {
		combined      float64
		contributions map[Strategy]float64
	}
	byTrack := make(map[uuid.UUID]*merged)
	for _, c := range candidates {
		if terminal[c.TrackID] {
			continue
		}
		norm := 0.0
		if maxSignal[c.Strategy] > 0 {
			norm = c.Signal / maxSignal[c.Strategy]
		}
		contribution := weights[c.Strategy] * norm

		m := byTrack[c.TrackID]
		if m == nil {
			m = &merged{contributions: make(map[Strategy]float64)}
			byTrack[c.TrackID] = m
		}
		m.combined += contribution
		m.contributions[c.Strategy] += contribution
	}
	if len(byTrack) == 0 {
		return nil
	}

	// Min-max scale combined scores into ratings.
	minScore, maxScore := 0.0, 0.0
	first := true
	for _, m := range byTrack {
		if first {
			minScore, maxScore = m.combined, m.combined
			first = false
			continue
		}
		if m.combined < minScore {
			minScore = m.combined
		}
		if m.combined > maxScore {
			maxScore = m.combined
		}
	}
	spread := maxScore - minScore

	scored := make([]ScoredTrack, 0, len(byTrack))
	for trackID, m := range byTrack {
		rating := 1.0
		if spread > 0 {
			rating = (m.combined - minScore) / spread
		}
		scored = append(scored, ScoredTrack{
			TrackID: trackID,
			Rating:  rating,
			Source:  dominantStrategy(m.contributions),
		})
	}

	slices.SortFunc(scored, func(a, b ScoredTrack) int {
		if a.Rating != b.Rating {
			if a.Rating > b.Rating {
				return -1
			}
			return 1
		}
		return compareIDs(a.TrackID, b.TrackID)
	})

	if size > 0 && len(scored) > size {
		scored = scored[:size]
	}
	return scored
}

// dominantStrategy attributes a merged track to the strategy with the
// largest weighted contribution, ties broken by fixed strategy order.
func dominantStrategy(contributions map[Strategy]float64) Strategy {
	best := strategyOrder[0]
	bestValue := -1.0
	for _, strategy := range strategyOrder {
		if v, ok := contributions[strategy]; ok && v > bestValue {
			best = strategy
			bestValue = v
		}
	}
	return best
}
