package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	baseURL   = "http://ws.audioscrobbler.com/2.0/"
	userAgent = "spotify-recommender/1.0"
)

// Last.fm API error codes.
const (
	errCodeNotFound      = 6
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrRateLimited is returned when the API rate limit is exceeded after retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrTrackNotFound is returned when Last.fm has no data for the track.
	ErrTrackNotFound = errors.New("track not found")
)

// Client is a Last.fm API client. Rate-limited requests are retried with
// backoff before ErrRateLimited is surfaced.
type Client struct {
	apiKey string
	http   *resty.Client
}

// NewClient creates a new Last.fm API client from the provided configuration.
func NewClient(cfg *Config) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(4 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil || resp == nil {
				return false
			}
			var apiErr apiError
			return json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error == errCodeRateLimited
		})

	return &Client{
		apiKey: cfg.APIKey,
		http:   http,
	}
}

// GetTrackInfo fetches tags, play statistics and the wiki summary for a
// track via track.getInfo.
func (c *Client) GetTrackInfo(ctx context.Context, artist, track string) (*TrackInfo, error) {
	body, err := c.get(ctx, map[string]string{
		"method": "track.getInfo",
		"artist": artist,
		"track":  track,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching track info: %w", err)
	}

	var resp trackInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing track info response: %w", err)
	}

	info := &TrackInfo{
		Name:        resp.Track.Name,
		Artist:      resp.Track.Artist.Name,
		Listeners:   parseCount(resp.Track.Listeners),
		Playcount:   parseCount(resp.Track.Playcount),
		WikiSummary: stripWikiLinks(resp.Track.Wiki.Summary),
	}
	for _, tag := range resp.Track.TopTags.Tag {
		info.Tags = append(info.Tags, tag.Name)
	}
	return info, nil
}

// GetSimilarTracks fetches the ordered similar-track list for a track
// via track.getSimilar, limited to the given count.
func (c *Client) GetSimilarTracks(ctx context.Context, artist, track string, limit int) ([]SimilarTrack, error) {
	body, err := c.get(ctx, map[string]string{
		"method": "track.getSimilar",
		"artist": artist,
		"track":  track,
		"limit":  strconv.Itoa(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching similar tracks: %w", err)
	}

	var resp similarTracksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing similar tracks response: %w", err)
	}

	similar := make([]SimilarTrack, 0, len(resp.SimilarTracks.Track))
	for _, t := range resp.SimilarTracks.Track {
		similar = append(similar, SimilarTrack{
			Name:   t.Name,
			Artist: t.Artist.Name,
			Match:  t.Match,
		})
	}
	return similar, nil
}

// get performs a single API call and maps Last.fm error payloads to
// sentinel errors.
func (c *Client) get(ctx context.Context, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("autocorrect", "1").
		SetQueryParam("format", "json").
		Get("")
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	body := resp.Body()
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		case errCodeNotFound:
			return nil, ErrTrackNotFound
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}
	return body, nil
}

// parseCount converts Last.fm's stringly numeric counters, returning 0
// for missing or malformed values.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// stripWikiLinks removes the trailing "Read more" link Last.fm appends
// to wiki summaries.
func stripWikiLinks(summary string) string {
	if i := strings.Index(summary, "<a href"); i >= 0 {
		summary = summary[:i]
	}
	return strings.TrimSpace(summary)
}
