package metadata

import (
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/sv4u/playlistdl/download/track"
)

// embedMP3 writes ID3v2 frames for t.
func (e *Embedder) embedMP3(filePath string, t *track.Track) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		// Unparseable tag: start a fresh one
		tag, err = id3v2.Open(filePath, id3v2.Options{Parse: false})
		if err != nil {
			return &MetadataError{Path: filePath, Message: "failed to open MP3 file", Original: err}
		}
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetTitle(t.Title)
	tag.SetArtist(strings.Join(t.ArtistNames(), ", "))
	if t.Album.Title != "" {
		tag.SetAlbum(t.Album.Title)
	}
	if t.Album.MainArtistName != "" {
		tag.AddTextFrame(tag.CommonID("TPE2"), id3v2.EncodingUTF8, t.Album.MainArtistName)
	}
	if len(t.Genres) > 0 {
		tag.SetGenre(strings.Join(t.Genres, "; "))
	}
	if t.Duration > 0 {
		tag.AddTextFrame(tag.CommonID("TLEN"), id3v2.EncodingUTF8, strconv.Itoa(t.Duration*1000))
	}
	if t.CatalogURL != "" {
		tag.AddTextFrame(tag.CommonID("WOAS"), id3v2.EncodingUTF8, t.CatalogURL)
	}
	if t.CatalogID != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: "SPOTIFY_ID",
			Value:       t.CatalogID,
		})
	}

	if err := tag.Save(); err != nil {
		return &MetadataError{Path: filePath, Message: "failed to save ID3 tag", Original: err}
	}
	return nil
}
