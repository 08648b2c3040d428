package spotify

import (
	"errors"
	"testing"
)

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "plain", url: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "share query", url: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", want: "37i9dQZF1DXcBWIGoYBM5M"},
		{name: "fragment", url: "https://open.spotify.com/playlist/abc#top", want: "abc"},
		{name: "trailing slash", url: "https://open.spotify.com/playlist/abc/", want: "abc"},
		{name: "surrounding whitespace", url: "  https://open.spotify.com/playlist/abc\n", want: "abc"},
		{name: "album", url: "https://open.spotify.com/album/abc", wantErr: true},
		{name: "http scheme", url: "http://open.spotify.com/playlist/abc", wantErr: true},
		{name: "no id", url: "https://open.spotify.com/playlist/", wantErr: true},
		{name: "only query", url: "https://open.spotify.com/playlist/?si=x", wantErr: true},
		{name: "bad characters", url: "https://open.spotify.com/playlist/ab-c", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPlaylistID(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractPlaylistID(%q) = %q, want error", tt.url, got)
				}
				if !errors.Is(err, ErrInvalidPlaylistURL) {
					t.Errorf("error %v does not wrap ErrInvalidPlaylistURL", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractPlaylistID(%q) failed: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractPlaylistID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractPlaylistID_Deterministic(t *testing.T) {
	u := "https://open.spotify.com/playlist/abc?si=1"
	first, _ := ExtractPlaylistID(u)
	second, _ := ExtractPlaylistID(u)
	if first != second {
		t.Errorf("ExtractPlaylistID not deterministic: %q vs %q", first, second)
	}
}

func TestValidatePlaylistURL(t *testing.T) {
	if err := ValidatePlaylistURL("https://open.spotify.com/playlist/abc"); err != nil {
		t.Errorf("expected valid URL, got %v", err)
	}
	if err := ValidatePlaylistURL("https://example.com/playlist/abc"); err == nil {
		t.Error("expected error for foreign host")
	}
}
