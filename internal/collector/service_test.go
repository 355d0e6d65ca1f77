package collector

import (
	"testing"
	"time"

	"github.com/rayers1001/recommendations-ml-spotify/internal/spotify"
)

func TestDedupeTracks(t *testing.T) {
	now := time.Now()
	played := []spotify.PlayedTrack{
		{SpotifyID: "a", Name: "First", Artist: "One", Popularity: 50, DurationMs: 200000, PlayedAt: now},
		{SpotifyID: "b", Name: "Second", Artist: "Two", Popularity: 60, DurationMs: 180000, PlayedAt: now},
		{SpotifyID: "a", Name: "First", Artist: "One", Popularity: 50, DurationMs: 200000, PlayedAt: now.Add(-time.Hour)},
	}

	got := dedupeTracks(played)

	if len(got) != 2 {
		t.Fatalf("dedupeTracks() returned %d tracks, want 2", len(got))
	}
	if got[0].SpotifyID != "a" || got[1].SpotifyID != "b" {
		t.Errorf("dedupeTracks() order = [%s %s], want [a b]", got[0].SpotifyID, got[1].SpotifyID)
	}
	if got[0].Popularity == nil || *got[0].Popularity != 50 {
		t.Errorf("Popularity not carried over: %v", got[0].Popularity)
	}
	if got[1].DurationMs == nil || *got[1].DurationMs != 180000 {
		t.Errorf("DurationMs not carried over: %v", got[1].DurationMs)
	}
}

func TestDedupeTracks_Empty(t *testing.T) {
	if got := dedupeTracks(nil); len(got) != 0 {
		t.Errorf("dedupeTracks(nil) = %v, want empty", got)
	}
}
