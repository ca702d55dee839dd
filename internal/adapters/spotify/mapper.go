package spotify

import (
	"strings"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
)

// mapTrackToDomain converts a raw Spotify track to a domain track.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artistNames = append(artistNames, a.Name)
	}

	return domain.Track{
		ID:         st.ID,
		Title:      st.Name,
		Artist:     strings.Join(artistNames, ", "),
		Album:      st.Album.Name,
		URI:        st.URI,
		PreviewURL: st.PreviewURL,
		DurationMs: st.DurationMs,
	}
}

func mapTracksToDomain(in []spotifyTrack) []domain.Track {
	out := make([]domain.Track, 0, len(in))
	for _, st := range in {
		out = append(out, mapTrackToDomain(st))
	}
	return out
}
