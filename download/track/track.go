// Package track defines the harvested track model and the metadata artifact
// that hands tracks from the harvest phase to the download phase.
package track

// RolePrimary is the only artist role the harvester assigns.
const RolePrimary = "primary"

// Artist is a credited artist on a track.
type Artist struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Album describes the album a track belongs to.
type Album struct {
	Title          string `json:"title"`
	MainArtistName string `json:"main_artist_name"`
}

// Track is one harvested playlist track. Field names are the stable wire
// format of the metadata artifact and the checkpoint.
type Track struct {
	CatalogID        string   `json:"spotify_id"`
	CatalogURL       string   `json:"spotify_url"`
	YouTubeURL       *string  `json:"youtube_url"`
	AppleMusicURL    *string  `json:"apple_music_url"`
	Title            string   `json:"song_title"`
	Duration         int      `json:"duration"`
	TrackPopularity  int      `json:"track_popularity"`
	ArtistPopularity int      `json:"artist_popularity"`
	Artists          []Artist `json:"artists"`
	Album            Album    `json:"album"`
	Genres           []string `json:"genres"`
}

// PrimaryArtist returns the name of the first artist with the primary role,
// or "" when there is none.
func (t *Track) PrimaryArtist() string {
	for _, a := range t.Artists {
		if a.Role == RolePrimary {
			return a.Name
		}
	}
	return ""
}

// ArtistNames returns all artist names in credit order.
func (t *Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// HasYouTubeURL reports whether a direct YouTube link was resolved.
func (t *Track) HasYouTubeURL() bool {
	return t.YouTubeURL != nil && *t.YouTubeURL != ""
}
