package recommend

import (
	"testing"

	"github.com/google/uuid"
)

func equalWeights() map[Strategy]float64 {
	return map[Strategy]float64{
		StrategyTagOverlap: 1.0,
		StrategySimilar:    1.0,
		StrategyTopTracks:  1.0,
	}
}

func TestRank_MoreOverlapScoresHigher(t *testing.T) {
	// One shared favorite tag vs two: the two-tag candidate must come
	// out ahead after scaling.
	candidates := []Candidate{
		{TrackID: tid(1), Strategy: StrategyTagOverlap, Signal: 1},
		{TrackID: tid(2), Strategy: StrategyTagOverlap, Signal: 2},
	}

	got := Rank(candidates, equalWeights(), nil, 30)
	if len(got) != 2 {
		t.Fatalf("Rank() returned %d tracks, want 2", len(got))
	}
	if got[0].TrackID != tid(2) {
		t.Errorf("top track = %s, want %s", got[0].TrackID, tid(2))
	}
	if got[0].Rating != 1.0 {
		t.Errorf("top rating = %v, want 1.0", got[0].Rating)
	}
	if got[1].Rating != 0.0 {
		t.Errorf("bottom rating = %v, want 0.0", got[1].Rating)
	}
}

func TestRank_MultiStrategyWins(t *testing.T) {
	// A track proposed by two strategies outranks the same signal under
	// a single strategy.
	candidates := []Candidate{
		{TrackID: tid(1), Strategy: StrategyTagOverlap, Signal: 2},
		{TrackID: tid(2), Strategy: StrategyTagOverlap, Signal: 2},
		{TrackID: tid(2), Strategy: StrategySimilar, Signal: 1},
		{TrackID: tid(3), Strategy: StrategySimilar, Signal: 1},
	}

	got := Rank(candidates, equalWeights(), nil, 30)
	if got[0].TrackID != tid(2) {
		t.Fatalf("top track = %s, want %s", got[0].TrackID, tid(2))
	}
	if got[0].Rating != 1.0 {
		t.Errorf("top rating = %v, want 1.0", got[0].Rating)
	}
}

func TestRank_RatingsInUnitRange(t *testing.T) {
	candidates := []Candidate{
		{TrackID: tid(1), Strategy: StrategyTagOverlap, Signal: 5},
		{TrackID: tid(2), Strategy: StrategySimilar, Signal: 1.5},
		{TrackID: tid(3), Strategy: StrategyTopTracks, Signal: 0.3},
		{TrackID: tid(4), Strategy: StrategyTagOverlap, Signal: 1},
	}

	got := Rank(candidates, equalWeights(), nil, 30)
	for _, s := range got {
		if s.Rating < 0 || s.Rating > 1 {
			t.Errorf("track %s rating = %v, want within [0, 1]", s.TrackID, s.Rating)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Rating > got[i-1].Rating {
			t.Errorf("ratings not descending at %d: %v > %v", i, got[i].Rating, got[i-1].Rating)
		}
	}
}

func TestRank_SingleCandidateRatesFull(t *testing.T) {
	candidates := []Candidate{
		{TrackID: tid(1), Strategy: StrategySimilar, Signal: 0.5},
	}

	got := Rank(candidates, equalWeights(), nil, 30)
	if len(got) != 1 {
		t.Fatalf("Rank() returned %d tracks, want 1", len(got))
	}
	// No spread to scale against; full confidence.
	if got[0].Rating != 1.0 {
		t.Errorf("rating = %v, want 1.0", got[0].Rating)
	}
}

func TestRank_TerminalExcluded(t *testing.T) {
	candidates := []Candidate{
		{TrackID: tid(1), Strategy: StrategyTagOverlap, Signal: 2},
		{TrackID: tid(2), Strategy: StrategyTagOverlap, Signal: 1},
	}
	terminal := map[uuid.UUID]bool{tid(1): true}

	got := Rank(candidates, equalWeights(), terminal, 30)
	if len(got) != 1 {
		t.Fatalf("Rank() returned %d tracks, want 1", len(got))
	}
	if got[0].TrackID != tid(2) {
		t.Errorf("remaining track = %s, want %s", got[0].TrackID, tid(2))
	}
}

func TestRank_Truncates(t *testing.T) {
	var candidates []Candidate
	for i := 1; i <= 10; i++ {
		candidates = append(candidates, Candidate{
			TrackID:  tid(byte(i)),
			Strategy: StrategyTagOverlap,
			Signal:   float64(i),
		})
	}

	got := Rank(candidates, equalWeights(), nil, 3)
	if len(got) != 3 {
		t.Fatalf("Rank() returned %d tracks, want 3", len(got))
	}
	if got[0].TrackID != tid(10) {
		t.Errorf("top track = %s, want %s", got[0].TrackID, tid(10))
	}
}

func TestRank_Deterministic(t *testing.T) {
	// Equal combined scores break ties by track ID.
	candidates := []Candidate{
		{TrackID: tid(3), Strategy: StrategyTagOverlap, Signal: 1},
		{TrackID: tid(1), Strategy: StrategyTagOverlap, Signal: 1},
		{TrackID: tid(2), Strategy: StrategyTagOverlap, Signal: 1},
	}

	for run := 0; run < 5; run++ {
		got := Rank(candidates, equalWeights(), nil, 30)
		want := []uuid.UUID{tid(1), tid(2), tid(3)}
		for i, id := range want {
			if got[i].TrackID != id {
				t.Fatalf("run %d: Rank()[%d] = %s, want %s", run, i, got[i].TrackID, id)
			}
		}
	}
}

func TestRank_SourceAttribution(t *testing.T) {
	candidates := []Candidate{
		{TrackID: tid(1), Strategy: StrategyTagOverlap, Signal: 1},
		{TrackID: tid(1), Strategy: StrategySimilar, Signal: 4},
		{TrackID: tid(2), Strategy: StrategySimilar, Signal: 4},
	}

	got := Rank(candidates, equalWeights(), nil, 30)
	for _, s := range got {
		switch s.TrackID {
		case tid(1):
			// Both strategies max out; the tie goes to the fixed order.
			if s.Source != StrategyTagOverlap {
				t.Errorf("track %s source = %s, want %s", s.TrackID, s.Source, StrategyTagOverlap)
			}
		case tid(2):
			if s.Source != StrategySimilar {
				t.Errorf("track %s source = %s, want %s", s.TrackID, s.Source, StrategySimilar)
			}
		}
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, equalWeights(), nil, 30); got != nil {
		t.Errorf("Rank(nil) = %v, want nil", got)
	}
}
