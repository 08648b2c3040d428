package download

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sv4u/playlistdl/download/audio"
	"github.com/sv4u/playlistdl/download/track"
)

// Method is how a track's audio file was obtained.
type Method string

const (
	MethodDirect  Method = "DIRECT"
	MethodSearch  Method = "SEARCH"
	MethodSkipped Method = "SKIPPED"
)

// Outcome is the result of resolving one track to a file. It is only used
// for statistics.
type Outcome struct {
	Success bool
	Method  Method
	Detail  string
	Path    string
}

// AudioProvider is the hosting service used to validate, search and download.
type AudioProvider interface {
	Probe(ctx context.Context, url string) (*audio.VideoMetadata, error)
	Search(ctx context.Context, query string) (string, error)
	Download(ctx context.Context, url string, opts audio.Options) (string, error)
}

// TagEmbedder writes track metadata into a downloaded file.
type TagEmbedder interface {
	Embed(ctx context.Context, filePath string, t *track.Track) error
}

// Downloader resolves harvested tracks to audio files under one output directory.
type Downloader struct {
	outputDir string
	options   audio.Options
	provider  AudioProvider
	embedder  TagEmbedder // nil disables tagging
}

// NewDownloader creates a new downloader. options is the shared base
// configuration; each download derives its own copy with the output path set.
func NewDownloader(outputDir string, options audio.Options, provider AudioProvider, embedder TagEmbedder) *Downloader {
	return &Downloader{
		outputDir: outputDir,
		options:   options,
		provider:  provider,
		embedder:  embedder,
	}
}

// OutputPath returns the file a track is written to: <output>/<catalog id>.<codec>.
func (d *Downloader) OutputPath(t *track.Track) string {
	return filepath.Join(d.outputDir, sanitizeFilename(t.CatalogID)+"."+d.options.Codec())
}

// BuildSearchQuery returns the search query for a track: its title followed by
// the primary artist's name.
func BuildSearchQuery(t *track.Track) string {
	return strings.TrimSpace(t.Title + " " + t.PrimaryArtist())
}

// ResolveAndFetch obtains the audio file for t. An existing file is never
// downloaded again; a resolved direct link is tried before a top-1 search.
// Failures are reported in the outcome, never returned.
func (d *Downloader) ResolveAndFetch(ctx context.Context, t *track.Track) Outcome {
	outputPath := d.OutputPath(t)

	if fileExists(outputPath) {
		log.Printf("INFO: download_skipped reason=file_exists track=%q spotify_id=%s path=%s", t.Title, t.CatalogID, outputPath)
		return Outcome{Success: true, Method: MethodSkipped, Detail: "file exists", Path: outputPath}
	}

	opts := d.options.WithOutput(outputPath)

	if t.HasYouTubeURL() {
		path, err := d.tryDirect(ctx, t, opts)
		if err == nil {
			d.embed(ctx, path, t)
			return Outcome{Success: true, Method: MethodDirect, Detail: *t.YouTubeURL, Path: path}
		}
		if ctx.Err() != nil {
			return d.cancelled(t, MethodDirect, ctx.Err())
		}
		log.Printf("WARN: direct_download_failed track=%q spotify_id=%s stage=direct error=%v", t.Title, t.CatalogID, err)
	}

	query := BuildSearchQuery(t)
	path, err := d.searchAndFetch(ctx, query, opts)
	if err != nil {
		if ctx.Err() != nil {
			return d.cancelled(t, MethodSearch, ctx.Err())
		}
		log.Printf("ERROR: download_failed track=%q spotify_id=%s stage=search query=%q error=%v", t.Title, t.CatalogID, query, err)
		return Outcome{Success: false, Method: MethodSearch, Detail: err.Error()}
	}

	d.embed(ctx, path, t)
	return Outcome{Success: true, Method: MethodSearch, Detail: query, Path: path}
}

// tryDirect validates the track's resolved link and downloads it.
func (d *Downloader) tryDirect(ctx context.Context, t *track.Track, opts audio.Options) (string, error) {
	url := *t.YouTubeURL
	if _, err := d.provider.Probe(ctx, url); err != nil {
		return "", fmt.Errorf("validate %s: %w", url, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	log.Printf("INFO: download_start method=direct track=%q url=%s", t.Title, url)
	path, err := d.provider.Download(ctx, url, opts)
	if err != nil {
		return "", err
	}
	log.Printf("INFO: download_complete method=direct track=%q path=%s", t.Title, path)
	return path, nil
}

// searchAndFetch downloads the top search result for query.
func (d *Downloader) searchAndFetch(ctx context.Context, query string, opts audio.Options) (string, error) {
	if query == "" {
		return "", fmt.Errorf("empty search query")
	}

	url, err := d.provider.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", &audio.SearchError{Message: fmt.Sprintf("No results for %q", query)}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	log.Printf("INFO: download_start method=search query=%q url=%s", query, url)
	path, err := d.provider.Download(ctx, url, opts)
	if err != nil {
		return "", err
	}
	log.Printf("INFO: download_complete method=search query=%q path=%s", query, path)
	return path, nil
}

// embed tags a downloaded file. Tagging never changes the outcome.
func (d *Downloader) embed(ctx context.Context, path string, t *track.Track) {
	if d.embedder == nil {
		return
	}
	if err := d.embedder.Embed(ctx, path, t); err != nil {
		log.Printf("WARN: metadata_embed_failed track=%q spotify_id=%s path=%s error=%v", t.Title, t.CatalogID, path, err)
	}
}

func (d *Downloader) cancelled(t *track.Track, method Method, err error) Outcome {
	log.Printf("WARN: download_cancelled track=%q spotify_id=%s error=%v", t.Title, t.CatalogID, err)
	return Outcome{Success: false, Method: method, Detail: "cancelled"}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// sanitizeFilename replaces characters that are invalid in filenames.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	sanitized := strings.Trim(replacer.Replace(name), " .")
	if sanitized == "" {
		sanitized = "unknown"
	}
	return sanitized
}
