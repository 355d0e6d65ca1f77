package lastfm

// TrackInfo is the parsed result of a track.getInfo call.
type TrackInfo struct {
	Name        string
	Artist      string
	Listeners   int64
	Playcount   int64
	Tags        []string // top tags in Last.fm order
	WikiSummary string   // plain-text summary, may be empty
}

// SimilarTrack is one entry of a track.getSimilar result, ordered by
// decreasing match score.
type SimilarTrack struct {
	Name   string
	Artist string
	Match  float64
}

// trackInfoResponse is the JSON response for track.getInfo.
// Numeric counters arrive as strings.
type trackInfoResponse struct {
	Track struct {
		Name   string `json:"name"`
		Artist struct {
			Name string `json:"name"`
		} `json:"artist"`
		Listeners string `json:"listeners"`
		Playcount string `json:"playcount"`
		TopTags   struct {
			Tag []struct {
				Name string `json:"name"`
				URL  string `json:"url"`
			} `json:"tag"`
		} `json:"toptags"`
		Wiki struct {
			Summary string `json:"summary"`
		} `json:"wiki"`
	} `json:"track"`
}

// similarTracksResponse is the JSON response for track.getSimilar.
type similarTracksResponse struct {
	SimilarTracks struct {
		Track []struct {
			Name  string  `json:"name"`
			Match float64 `json:"match"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"similartracks"`
}

// apiError represents a Last.fm API error response.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
