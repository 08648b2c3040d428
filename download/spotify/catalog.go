package spotify

import (
	"context"

	"github.com/sv4u/spotigo"
)

// ArtistRef is a credited artist on a track.
type ArtistRef struct {
	ID   string
	Name string
}

// PlaylistEntry is a playable playlist item reduced to the fields the
// harvester records.
type PlaylistEntry struct {
	ID         string
	Name       string
	URL        string
	DurationMs int
	Popularity int
	Album      string
	Artists    []ArtistRef
}

// ArtistInfo is the enrichment data fetched per artist.
type ArtistInfo struct {
	ID         string
	Name       string
	Genres     []string
	Popularity int
}

// PlaylistPage is one page of playlist entries in playlist order. A nil
// element marks an entry with no playable track (removed, local or podcast
// episode).
type PlaylistPage struct {
	Entries []*PlaylistEntry
	HasNext bool

	// Continuation is opaque state the producing Catalog uses to fetch the
	// following page.
	Continuation any
}

// Catalog is the read-only view of the catalog the harvester walks.
type Catalog interface {
	FirstPage(ctx context.Context, playlistID string) (*PlaylistPage, error)
	NextPage(ctx context.Context, page *PlaylistPage) (*PlaylistPage, error)
	Artist(ctx context.Context, artistID string) (*ArtistInfo, error)
}

// playlistAPI is the subset of SpotifyClient the catalog adapter needs.
type playlistAPI interface {
	GetPlaylistTracks(ctx context.Context, playlistID string, opts *spotigo.PlaylistTracksOptions) (*spotigo.Paging[spotigo.PlaylistTrack], error)
	NextPlaylistTracks(ctx context.Context, paging interface{ GetNext() *string }) (*spotigo.Paging[spotigo.PlaylistTrack], error)
	GetArtist(ctx context.Context, artistIDOrURL string) (*spotigo.Artist, error)
}

// SpotigoCatalog adapts a SpotifyClient to the Catalog interface.
type SpotigoCatalog struct {
	api playlistAPI
}

// NewCatalog returns a Catalog backed by client.
func NewCatalog(client *SpotifyClient) *SpotigoCatalog {
	return &SpotigoCatalog{api: client}
}

// FirstPage fetches the first page of playlistID.
func (c *SpotigoCatalog) FirstPage(ctx context.Context, playlistID string) (*PlaylistPage, error) {
	paging, err := c.api.GetPlaylistTracks(ctx, playlistID, nil)
	if err != nil {
		return nil, err
	}
	return convertPage(paging), nil
}

// NextPage fetches the page following page. It returns nil when there is none.
func (c *SpotigoCatalog) NextPage(ctx context.Context, page *PlaylistPage) (*PlaylistPage, error) {
	paging, ok := page.Continuation.(*spotigo.Paging[spotigo.PlaylistTrack])
	if !ok || !page.HasNext {
		return nil, nil
	}
	next, err := c.api.NextPlaylistTracks(ctx, paging)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}
	return convertPage(next), nil
}

// Artist fetches genre and popularity data for artistID.
func (c *SpotigoCatalog) Artist(ctx context.Context, artistID string) (*ArtistInfo, error) {
	artist, err := c.api.GetArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return &ArtistInfo{
		ID:         artist.ID,
		Name:       artist.Name,
		Genres:     artist.Genres,
		Popularity: artist.Popularity,
	}, nil
}

func convertPage(paging *spotigo.Paging[spotigo.PlaylistTrack]) *PlaylistPage {
	if paging == nil {
		return &PlaylistPage{}
	}
	page := &PlaylistPage{
		Entries:      make([]*PlaylistEntry, 0, len(paging.Items)),
		HasNext:      paging.GetNext() != nil,
		Continuation: paging,
	}
	for _, item := range paging.Items {
		page.Entries = append(page.Entries, convertEntry(item.Track))
	}
	return page
}

// convertEntry returns nil for anything that is not a playable catalog track.
func convertEntry(track any) *PlaylistEntry {
	var entry *PlaylistEntry
	switch t := track.(type) {
	case *spotigo.Track:
		if t == nil || t.IsLocal {
			return nil
		}
		entry = fromTrack(t)
	case spotigo.Track:
		if t.IsLocal {
			return nil
		}
		entry = fromTrack(&t)
	case *spotigo.SimplifiedTrack:
		if t == nil || t.IsLocal {
			return nil
		}
		entry = fromSimplifiedTrack(t)
	case spotigo.SimplifiedTrack:
		if t.IsLocal {
			return nil
		}
		entry = fromSimplifiedTrack(&t)
	default:
		return nil
	}
	if entry.ID == "" {
		return nil
	}
	return entry
}

func fromTrack(t *spotigo.Track) *PlaylistEntry {
	entry := &PlaylistEntry{
		ID:         t.ID,
		Name:       t.Name,
		DurationMs: t.DurationMs,
		Popularity: t.Popularity,
	}
	if t.ExternalURLs != nil {
		entry.URL = t.ExternalURLs.Spotify
	}
	if t.Album != nil {
		entry.Album = t.Album.Name
	}
	for _, a := range t.Artists {
		entry.Artists = append(entry.Artists, ArtistRef{ID: a.ID, Name: a.Name})
	}
	return entry
}

func fromSimplifiedTrack(t *spotigo.SimplifiedTrack) *PlaylistEntry {
	entry := &PlaylistEntry{
		ID:         t.ID,
		Name:       t.Name,
		DurationMs: t.DurationMs,
	}
	if t.ExternalURLs != nil {
		entry.URL = t.ExternalURLs.Spotify
	}
	for _, a := range t.Artists {
		entry.Artists = append(entry.Artists, ArtistRef{ID: a.ID, Name: a.Name})
	}
	return entry
}
