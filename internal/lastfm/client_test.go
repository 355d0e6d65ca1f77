package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient points a client at a test server and disables retry
// backoff so tests stay fast.
func newTestClient(serverURL string) *Client {
	client := NewClient(&Config{APIKey: "test-key"})
	client.http.
		SetBaseURL(serverURL).
		SetRetryWaitTime(time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Millisecond)
	return client
}

func TestGetTrackInfo(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     *TrackInfo
		wantErr  error
	}{
		{
			name: "full response",
			response: `{
				"track": {
					"name": "Paranoid Android",
					"artist": {"name": "Radiohead"},
					"listeners": "1234567",
					"playcount": "9876543",
					"toptags": {"tag": [
						{"name": "alternative", "url": "https://last.fm/tag/alternative"},
						{"name": "rock", "url": "https://last.fm/tag/rock"}
					]},
					"wiki": {"summary": "A song from OK Computer. <a href=\"https://last.fm\">Read more</a>"}
				}
			}`,
			want: &TrackInfo{
				Name:        "Paranoid Android",
				Artist:      "Radiohead",
				Listeners:   1234567,
				Playcount:   9876543,
				Tags:        []string{"alternative", "rock"},
				WikiSummary: "A song from OK Computer.",
			},
		},
		{
			name: "no tags or wiki",
			response: `{
				"track": {
					"name": "Obscure B-Side",
					"artist": {"name": "Somebody"},
					"listeners": "12",
					"playcount": "40"
				}
			}`,
			want: &TrackInfo{
				Name:      "Obscure B-Side",
				Artist:    "Somebody",
				Listeners: 12,
				Playcount: 40,
			},
		},
		{
			name:     "track not found",
			response: `{"error": 6, "message": "Track not found"}`,
			wantErr:  ErrTrackNotFound,
		},
		{
			name:     "invalid api key",
			response: `{"error": 10, "message": "Invalid API key"}`,
			wantErr:  ErrInvalidAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("method") != "track.getInfo" {
					t.Errorf("method = %q, want track.getInfo", q.Get("method"))
				}
				if q.Get("api_key") != "test-key" {
					t.Errorf("api_key = %q, want test-key", q.Get("api_key"))
				}
				if q.Get("format") != "json" {
					t.Errorf("format = %q, want json", q.Get("format"))
				}
				fmt.Fprint(w, tt.response)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			info, err := client.GetTrackInfo(context.Background(), "Radiohead", "Paranoid Android")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GetTrackInfo() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetTrackInfo() error = %v", err)
			}

			if info.Name != tt.want.Name {
				t.Errorf("Name = %q, want %q", info.Name, tt.want.Name)
			}
			if info.Artist != tt.want.Artist {
				t.Errorf("Artist = %q, want %q", info.Artist, tt.want.Artist)
			}
			if info.Listeners != tt.want.Listeners {
				t.Errorf("Listeners = %d, want %d", info.Listeners, tt.want.Listeners)
			}
			if info.Playcount != tt.want.Playcount {
				t.Errorf("Playcount = %d, want %d", info.Playcount, tt.want.Playcount)
			}
			if info.WikiSummary != tt.want.WikiSummary {
				t.Errorf("WikiSummary = %q, want %q", info.WikiSummary, tt.want.WikiSummary)
			}
			if len(info.Tags) != len(tt.want.Tags) {
				t.Fatalf("Tags = %v, want %v", info.Tags, tt.want.Tags)
			}
			for i := range info.Tags {
				if info.Tags[i] != tt.want.Tags[i] {
					t.Errorf("Tags[%d] = %q, want %q", i, info.Tags[i], tt.want.Tags[i])
				}
			}
		})
	}
}

func TestGetSimilarTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("method") != "track.getSimilar" {
			t.Errorf("method = %q, want track.getSimilar", q.Get("method"))
		}
		if q.Get("limit") != "10" {
			t.Errorf("limit = %q, want 10", q.Get("limit"))
		}
		fmt.Fprint(w, `{
			"similartracks": {"track": [
				{"name": "Karma Police", "match": 0.98, "artist": {"name": "Radiohead"}},
				{"name": "Black Star", "match": 0.75, "artist": {"name": "Radiohead"}}
			]}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	similar, err := client.GetSimilarTracks(context.Background(), "Radiohead", "Paranoid Android", 10)
	if err != nil {
		t.Fatalf("GetSimilarTracks() error = %v", err)
	}

	want := []SimilarTrack{
		{Name: "Karma Police", Artist: "Radiohead", Match: 0.98},
		{Name: "Black Star", Artist: "Radiohead", Match: 0.75},
	}
	if len(similar) != len(want) {
		t.Fatalf("GetSimilarTracks() returned %d tracks, want %d", len(similar), len(want))
	}
	for i := range want {
		if similar[i] != want[i] {
			t.Errorf("similar[%d] = %+v, want %+v", i, similar[i], want[i])
		}
	}
}

func TestGetTrackInfo_RateLimitRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			fmt.Fprint(w, `{"error": 29, "message": "Rate limit exceeded"}`)
			return
		}
		fmt.Fprint(w, `{
			"track": {
				"name": "Creep",
				"artist": {"name": "Radiohead"},
				"listeners": "1",
				"playcount": "1"
			}
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	info, err := client.GetTrackInfo(context.Background(), "Radiohead", "Creep")
	if err != nil {
		t.Fatalf("GetTrackInfo() error = %v, want retry to succeed", err)
	}
	if info.Name != "Creep" {
		t.Errorf("Name = %q, want Creep", info.Name)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server received %d calls, want 3", got)
	}
}

func TestGetTrackInfo_RateLimitExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": 29, "message": "Rate limit exceeded"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetTrackInfo(context.Background(), "Radiohead", "Creep")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("GetTrackInfo() error = %v, want ErrRateLimited", err)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"123456", 123456},
		{"0", 0},
		{"", 0},
		{"not-a-number", 0},
	}

	for _, tt := range tests {
		if got := parseCount(tt.input); got != tt.want {
			t.Errorf("parseCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestStripWikiLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "summary with link",
			input: `Great song. <a href="https://last.fm">Read more</a>`,
			want:  "Great song.",
		},
		{
			name:  "summary without link",
			input: "Just a summary.",
			want:  "Just a summary.",
		},
		{
			name:  "empty summary",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripWikiLinks(tt.input); got != tt.want {
				t.Errorf("stripWikiLinks() = %q, want %q", got, tt.want)
			}
		})
	}
}
