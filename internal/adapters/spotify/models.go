package spotify

// spotifyArtist is the simplified artist object.
type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyAlbum is the simplified album object.
type spotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyTrack represents the Spotify API track object.
type spotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	URI        string          `json:"uri"`
	PreviewURL string          `json:"preview_url"`
	DurationMs int             `json:"duration_ms"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
}

// playHistoryItem is one entry of GET /me/player/recently-played.
type playHistoryItem struct {
	Track    spotifyTrack `json:"track"`
	PlayedAt string       `json:"played_at"`
}

type recentlyPlayedResponse struct {
	Items []playHistoryItem `json:"items"`
}

type recommendationsResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}
