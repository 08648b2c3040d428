package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"

	"github.com/sv4u/playlistdl/download/track"
)

func testTrack() *track.Track {
	return &track.Track{
		CatalogID:  "abc",
		CatalogURL: "https://open.spotify.com/track/abc",
		Title:      "Foo",
		Duration:   200,
		Artists: []track.Artist{
			{Name: "Bar", Role: track.RolePrimary},
			{Name: "Baz", Role: track.RolePrimary},
		},
		Album:  track.Album{Title: "Foo LP", MainArtistName: "Bar"},
		Genres: []string{"indie", "rock"},
	}
}

func TestEmbedder_EmbedMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewEmbedder().Embed(context.Background(), path, testTrack()); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to reopen tagged file: %v", err)
	}
	defer tag.Close()

	if tag.Title() != "Foo" {
		t.Errorf("Title = %q, want Foo", tag.Title())
	}
	if tag.Artist() != "Bar, Baz" {
		t.Errorf("Artist = %q, want Bar, Baz", tag.Artist())
	}
	if tag.Album() != "Foo LP" {
		t.Errorf("Album = %q, want Foo LP", tag.Album())
	}
	if tag.Genre() != "indie; rock" {
		t.Errorf("Genre = %q, want indie; rock", tag.Genre())
	}
}

func TestEmbedder_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.opus")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewEmbedder().Embed(context.Background(), path, testTrack()); err != nil {
		t.Errorf("Expected no error for unsupported format, got: %v", err)
	}
}

func TestEmbedder_FileNotFound(t *testing.T) {
	err := NewEmbedder().Embed(context.Background(), "/nonexistent/file.mp3", testTrack())
	var merr *MetadataError
	if !errors.As(err, &merr) {
		t.Errorf("Expected MetadataError, got %T", err)
	}
}

func TestEmbedder_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewEmbedder().Embed(ctx, "whatever.mp3", testTrack())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
