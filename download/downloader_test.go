package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sv4u/playlistdl/download/audio"
	"github.com/sv4u/playlistdl/download/track"
)

// fakeProvider records calls and writes an empty file on successful downloads.
type fakeProvider struct {
	probeErr    error
	searchURL   string
	searchErr   error
	downloadErr map[string]error // keyed by URL

	probes    []string
	searches  []string
	downloads []string
}

func (f *fakeProvider) Probe(ctx context.Context, url string) (*audio.VideoMetadata, error) {
	f.probes = append(f.probes, url)
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return &audio.VideoMetadata{WebpageURL: url, Availability: "public"}, nil
}

func (f *fakeProvider) Search(ctx context.Context, query string) (string, error) {
	f.searches = append(f.searches, query)
	return f.searchURL, f.searchErr
}

func (f *fakeProvider) Download(ctx context.Context, url string, opts audio.Options) (string, error) {
	f.downloads = append(f.downloads, url)
	if err := f.downloadErr[url]; err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(opts.OutputPath()), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(opts.OutputPath(), []byte("audio"), 0644); err != nil {
		return "", err
	}
	return opts.OutputPath(), nil
}

func (f *fakeProvider) calls() int {
	return len(f.probes) + len(f.searches) + len(f.downloads)
}

type fakeEmbedder struct {
	err    error
	tagged []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, filePath string, t *track.Track) error {
	f.tagged = append(f.tagged, filePath)
	return f.err
}

func strPtr(s string) *string { return &s }

func fooBar() *track.Track {
	return &track.Track{
		CatalogID: "abc",
		Title:     "Foo",
		Artists:   []track.Artist{{Name: "Bar", Role: track.RolePrimary}},
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		track track.Track
		want  string
	}{
		{"title and primary artist", *fooBar(), "Foo Bar"},
		{
			"first primary artist wins",
			track.Track{Title: "Song", Artists: []track.Artist{
				{Name: "Guest", Role: "featured"},
				{Name: "Lead", Role: track.RolePrimary},
				{Name: "Other", Role: track.RolePrimary},
			}},
			"Song Lead",
		},
		{"no artists", track.Track{Title: "Lonely"}, "Lonely"},
		{"no title", track.Track{Artists: []track.Artist{{Name: "Bar", Role: track.RolePrimary}}}, "Bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchQuery(&tt.track); got != tt.want {
				t.Errorf("BuildSearchQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveAndFetch_NoLinkSearches(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{searchURL: "https://www.youtube.com/watch?v=found"}
	d := NewDownloader(dir, audio.NewOptions("mp3", "320"), provider, nil)

	out := d.ResolveAndFetch(context.Background(), fooBar())

	if !out.Success || out.Method != MethodSearch {
		t.Fatalf("outcome = %+v, want successful SEARCH", out)
	}
	if len(provider.probes) != 0 {
		t.Errorf("Probe called %d times, want 0", len(provider.probes))
	}
	if len(provider.searches) != 1 || provider.searches[0] != "Foo Bar" {
		t.Errorf("searches = %v, want [Foo Bar]", provider.searches)
	}
	want := filepath.Join(dir, "abc.mp3")
	if out.Path != want {
		t.Errorf("Path = %q, want %q", out.Path, want)
	}
}

func TestResolveAndFetch_ExistingFileMakesNoCalls(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "abc.mp3"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	provider := &fakeProvider{searchURL: "https://www.youtube.com/watch?v=found"}
	d := NewDownloader(dir, audio.NewOptions("mp3", "320"), provider, nil)

	tr := fooBar()
	tr.YouTubeURL = strPtr("https://www.youtube.com/watch?v=direct1234")
	out := d.ResolveAndFetch(context.Background(), tr)

	if !out.Success || out.Method != MethodSkipped {
		t.Fatalf("outcome = %+v, want successful SKIPPED", out)
	}
	if provider.calls() != 0 {
		t.Errorf("provider calls = %d, want 0", provider.calls())
	}
}

func TestResolveAndFetch_DirectLink(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{}
	embedder := &fakeEmbedder{}
	d := NewDownloader(dir, audio.NewOptions("mp3", "320"), provider, embedder)

	tr := fooBar()
	tr.YouTubeURL = strPtr("https://www.youtube.com/watch?v=direct1234")
	out := d.ResolveAndFetch(context.Background(), tr)

	if !out.Success || out.Method != MethodDirect {
		t.Fatalf("outcome = %+v, want successful DIRECT", out)
	}
	if len(provider.searches) != 0 {
		t.Errorf("Search called %d times, want 0", len(provider.searches))
	}
	if len(embedder.tagged) != 1 || embedder.tagged[0] != out.Path {
		t.Errorf("tagged = %v, want [%s]", embedder.tagged, out.Path)
	}
}

func TestResolveAndFetch_FallsBackToSearch(t *testing.T) {
	direct := "https://www.youtube.com/watch?v=direct1234"
	found := "https://www.youtube.com/watch?v=found"

	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{
			name:     "validation fails",
			provider: &fakeProvider{probeErr: &audio.ValidationError{URL: direct, Message: "private"}, searchURL: found},
		},
		{
			name: "direct download fails",
			provider: &fakeProvider{
				searchURL:   found,
				downloadErr: map[string]error{direct: &audio.DownloadError{Message: "boom"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDownloader(t.TempDir(), audio.NewOptions("mp3", "320"), tt.provider, nil)
			tr := fooBar()
			tr.YouTubeURL = strPtr(direct)

			out := d.ResolveAndFetch(context.Background(), tr)
			if !out.Success || out.Method != MethodSearch {
				t.Fatalf("outcome = %+v, want successful SEARCH", out)
			}
			if len(tt.provider.searches) != 1 {
				t.Errorf("searches = %v, want one", tt.provider.searches)
			}
		})
	}
}

func TestResolveAndFetch_SearchFailureIsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{"search error", &fakeProvider{searchErr: &audio.SearchError{Message: "boom"}}},
		{"no results", &fakeProvider{}},
		{
			"download error",
			&fakeProvider{
				searchURL:   "https://www.youtube.com/watch?v=found",
				downloadErr: map[string]error{"https://www.youtube.com/watch?v=found": errors.New("boom")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			d := NewDownloader(dir, audio.NewOptions("mp3", "320"), tt.provider, nil)

			out := d.ResolveAndFetch(context.Background(), fooBar())
			if out.Success || out.Method != MethodSearch {
				t.Fatalf("outcome = %+v, want failed SEARCH", out)
			}
			if out.Detail == "" {
				t.Error("expected failure detail")
			}
			if fileExists(filepath.Join(dir, "abc.mp3")) {
				t.Error("no file should be written")
			}
		})
	}
}

func TestResolveAndFetch_EmbedFailureKeepsSuccess(t *testing.T) {
	provider := &fakeProvider{searchURL: "https://www.youtube.com/watch?v=found"}
	embedder := &fakeEmbedder{err: errors.New("bad tag")}
	d := NewDownloader(t.TempDir(), audio.NewOptions("mp3", "320"), provider, embedder)

	out := d.ResolveAndFetch(context.Background(), fooBar())
	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
}

func TestResolveAndFetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider := &fakeProvider{searchURL: "https://www.youtube.com/watch?v=found"}
	d := NewDownloader(t.TempDir(), audio.NewOptions("mp3", "320"), provider, nil)

	out := d.ResolveAndFetch(ctx, fooBar())
	if out.Success {
		t.Fatalf("outcome = %+v, want failure", out)
	}
	if len(provider.downloads) != 0 {
		t.Errorf("downloads = %v, want none", provider.downloads)
	}
}

func TestDownloader_OutputPath(t *testing.T) {
	d := NewDownloader("songs", audio.NewOptions("flac", ""), nil, nil)
	tests := []struct {
		id   string
		want string
	}{
		{"abc123", filepath.Join("songs", "abc123.flac")},
		{"a/b", filepath.Join("songs", "a_b.flac")},
		{"", filepath.Join("songs", "unknown.flac")},
	}
	for _, tt := range tests {
		if got := d.OutputPath(&track.Track{CatalogID: tt.id}); got != tt.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
