package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTagOverlapCandidates(t *testing.T) {
	favorites := []string{"rock", "90s"}
	pool := []TaggedTrack{
		{TrackID: tid(1), Tags: []string{"rock"}},
		{TrackID: tid(2), Tags: []string{"90s", "rock"}},
		{TrackID: tid(3), Tags: []string{"jazz"}},
		{TrackID: tid(4), Tags: []string{"rock", "rock"}}, // duplicate tag counts once
	}

	got := tagOverlapCandidates(pool, favorites, 20)

	// tid(3) has no overlap and is dropped; tid(2) leads with overlap 2.
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	if got[0].TrackID != tid(2) || got[0].Signal != 2 {
		t.Errorf("top candidate = %+v, want track %s signal 2", got[0], tid(2))
	}
	for _, c := range got[1:] {
		if c.Signal != 1 {
			t.Errorf("candidate %s signal = %v, want 1", c.TrackID, c.Signal)
		}
		if c.Strategy != StrategyTagOverlap {
			t.Errorf("candidate %s strategy = %s, want %s", c.TrackID, c.Strategy, StrategyTagOverlap)
		}
	}
}

func TestTagOverlapCandidates_Cap(t *testing.T) {
	favorites := []string{"rock"}
	pool := make([]TaggedTrack, 10)
	for i := range pool {
		pool[i] = TaggedTrack{TrackID: tid(byte(i + 1)), Tags: []string{"rock"}}
	}

	got := tagOverlapCandidates(pool, favorites, 3)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want cap of 3", len(got))
	}
}

func TestSimilarTrackCandidates(t *testing.T) {
	sources := []HistoryEntry{
		{TrackID: tid(1), PlayCount: 5},
		{TrackID: tid(2), PlayCount: 3},
	}
	lists := map[uuid.UUID][]uuid.UUID{
		tid(1): {tid(10), tid(11)},
		tid(2): {tid(11), tid(12)},
	}
	excluded := map[uuid.UUID]bool{tid(12): true}

	got := similarTrackCandidates(sources, lists, excluded, 20)

	// tid(11): rank 2 under tid(1) and rank 1 under tid(2) = 0.5 + 1.0.
	// tid(10): rank 1 under tid(1) = 1.0. tid(12) is excluded.
	wantSignals := map[uuid.UUID]float64{
		tid(11): 1.5,
		tid(10): 1.0,
	}
	if len(got) != len(wantSignals) {
		t.Fatalf("got %d candidates, want %d", len(got), len(wantSignals))
	}
	for _, c := range got {
		want, ok := wantSignals[c.TrackID]
		if !ok {
			t.Errorf("unexpected candidate %s", c.TrackID)
			continue
		}
		if math.Abs(c.Signal-want) > 1e-9 {
			t.Errorf("candidate %s signal = %v, want %v", c.TrackID, c.Signal, want)
		}
	}
	if got[0].TrackID != tid(11) {
		t.Errorf("top candidate = %s, want %s", got[0].TrackID, tid(11))
	}
}

func TestFallbackCandidates(t *testing.T) {
	now := time.Now()
	topTracks := []HistoryEntry{
		{TrackID: tid(1), PlayCount: 4, LastPlayedAt: now},
		{TrackID: tid(2), PlayCount: 2, LastPlayedAt: now},
		{TrackID: tid(3), PlayCount: 1, LastPlayedAt: now},
	}
	recommended := map[uuid.UUID]bool{tid(2): true}

	got := fallbackCandidates(topTracks, recommended, 20)

	// Already-recommended tracks never come back through the fallback.
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].TrackID != tid(1) || got[0].Signal != 1.0 {
		t.Errorf("top candidate = %+v, want track %s signal 1.0", got[0], tid(1))
	}
	if got[1].TrackID != tid(3) || got[1].Signal != 0.25 {
		t.Errorf("second candidate = %+v, want track %s signal 0.25", got[1], tid(3))
	}
	for _, c := range got {
		if c.Strategy != StrategyTopTracks {
			t.Errorf("candidate %s strategy = %s, want %s", c.TrackID, c.Strategy, StrategyTopTracks)
		}
	}
}

func TestFallbackCandidates_Empty(t *testing.T) {
	if got := fallbackCandidates(nil, nil, 20); got != nil {
		t.Errorf("fallbackCandidates(nil) = %v, want nil", got)
	}
}

func TestCapCandidates_Deterministic(t *testing.T) {
	candidates := []Candidate{
		{TrackID: tid(3), Signal: 1},
		{TrackID: tid(1), Signal: 1},
		{TrackID: tid(2), Signal: 2},
	}

	got := capCandidates(candidates, 0)

	// Signal desc, then track ID for equal signals.
	want := []uuid.UUID{tid(2), tid(1), tid(3)}
	for i, id := range want {
		if got[i].TrackID != id {
			t.Errorf("capCandidates()[%d] = %s, want %s", i, got[i].TrackID, id)
		}
	}
}
