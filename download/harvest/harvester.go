// Package harvest walks a playlist in the catalog, enriches every track with
// artist metadata and cross-platform links, and checkpoints progress so a
// quota, connection or interrupt abort loses little work.
package harvest

import (
	"context"
	"log"

	"github.com/sv4u/playlistdl/download/checkpoint"
	"github.com/sv4u/playlistdl/download/links"
	"github.com/sv4u/playlistdl/download/spotify"
	"github.com/sv4u/playlistdl/download/track"
)

// DefaultCheckpointInterval is the number of tracks between periodic checkpoints.
const DefaultCheckpointInterval = 10

// Abort stages.
const (
	StageParseURL       = "parse_url"
	StageFetchPage      = "fetch_page"
	StageArtistMetadata = "artist_metadata"
	StageLinkResolution = "link_resolution"
)

// LinkResolver resolves cross-platform links for a catalog track URL.
type LinkResolver interface {
	Resolve(ctx context.Context, canonicalURL string) links.Links
}

// ProgressStore persists harvest checkpoints.
type ProgressStore interface {
	Save(playlistID string, tracks []track.Track, cursor int) error
	Load() (checkpoint.Checkpoint, bool)
	Clear() error
	Exists() bool
	Path() string
}

// Config configures a Harvester.
type Config struct {
	CheckpointInterval int
}

// Harvester builds the enriched track list for one playlist.
type Harvester struct {
	catalog  spotify.Catalog
	links    LinkResolver
	store    ProgressStore
	interval int
}

// New creates a harvester over the given collaborators.
func New(catalog spotify.Catalog, resolver LinkResolver, store ProgressStore, cfg Config) *Harvester {
	interval := cfg.CheckpointInterval
	if interval <= 0 {
		interval = DefaultCheckpointInterval
	}
	return &Harvester{
		catalog:  catalog,
		links:    resolver,
		store:    store,
		interval: interval,
	}
}

// HasCheckpoint reports whether a resumable checkpoint exists.
func (h *Harvester) HasCheckpoint() bool {
	return h.store.Exists()
}

// run is the mutable state of one harvest pass.
type run struct {
	playlistID string
	tracks     []track.Track
	seen       map[string]bool
}

func (r *run) add(t track.Track) {
	r.tracks = append(r.tracks, t)
	r.seen[t.CatalogID] = true
}

// Harvest returns the enriched tracks of the playlist at playlistURL in
// playlist order. The only errors returned are *Error values of kind
// InvalidInput, QuotaExceeded, ConnectionFailure or Interrupted; every
// other failure is absorbed per track.
func (h *Harvester) Harvest(ctx context.Context, playlistURL string, resume Resume) ([]track.Track, error) {
	playlistID, err := spotify.ExtractPlaylistID(playlistURL)
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Stage: StageParseURL, Err: err}
	}

	r := &run{playlistID: playlistID, seen: make(map[string]bool)}

	cp, ok := h.store.Load()
	switch {
	case !ok:
	case resume == ResumeFresh:
		log.Printf("INFO: checkpoint_discarded path=%s tracks=%d", h.store.Path(), len(cp.Tracks))
		if err := h.store.Clear(); err != nil {
			log.Printf("WARN: checkpoint_clear_failed error=%v", err)
		}
	default:
		if cp.PlaylistID != "" && cp.PlaylistID != playlistID {
			log.Printf("WARN: checkpoint_playlist_mismatch checkpoint_playlist=%s playlist=%s", cp.PlaylistID, playlistID)
		}
		if resume == ResumeVerbatim {
			log.Printf("INFO: checkpoint_resumed mode=verbatim tracks=%d", len(cp.Tracks))
			return cp.Tracks, nil
		}
		for _, t := range cp.Tracks[:cp.CurrentIndex] {
			r.add(t)
		}
		log.Printf("INFO: checkpoint_resumed mode=continue tracks=%d", len(r.tracks))
	}

	log.Printf("INFO: harvest_started playlist_id=%s resume=%s", playlistID, resume)

	page, err := h.catalog.FirstPage(ctx, playlistID)
	if err != nil {
		return nil, h.abort(r, StageFetchPage, err)
	}

	for page != nil {
		for _, entry := range page.Entries {
			if entry == nil {
				continue
			}
			if r.seen[entry.ID] {
				continue
			}
			if len(entry.Artists) == 0 {
				log.Printf("WARN: track_skipped track_id=%s title=%q reason=no_artists", entry.ID, entry.Name)
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, h.abort(r, StageFetchPage, err)
			}

			t, stage, err := h.buildTrack(ctx, entry)
			if err != nil {
				return nil, h.abort(r, stage, err)
			}
			r.add(t)

			if len(r.tracks)%h.interval == 0 {
				h.save(r)
			}
		}

		if !page.HasNext {
			break
		}
		page, err = h.catalog.NextPage(ctx, page)
		if err != nil {
			return nil, h.abort(r, StageFetchPage, err)
		}
	}

	h.save(r)
	if err := h.store.Clear(); err != nil {
		log.Printf("WARN: checkpoint_clear_failed error=%v", err)
	}

	log.Printf("INFO: harvest_completed playlist_id=%s tracks=%d", playlistID, len(r.tracks))
	return r.tracks, nil
}

// buildTrack enriches one entry. It fails only with an abort-class error,
// reporting the stage it occurred in.
func (h *Harvester) buildTrack(ctx context.Context, entry *spotify.PlaylistEntry) (track.Track, string, error) {
	t := track.Track{
		CatalogID:       entry.ID,
		CatalogURL:      entry.URL,
		Title:           entry.Name,
		Duration:        entry.DurationMs / 1000,
		TrackPopularity: entry.Popularity,
		Artists:         make([]track.Artist, 0, len(entry.Artists)),
		Genres:          []string{},
	}

	genreSeen := make(map[string]bool)
	for i, a := range entry.Artists {
		t.Artists = append(t.Artists, track.Artist{Name: a.Name, Role: track.RolePrimary})
		if a.ID == "" {
			continue
		}

		info, err := h.catalog.Artist(ctx, a.ID)
		if err != nil {
			if classify(err) != KindOther {
				return track.Track{}, StageArtistMetadata, err
			}
			log.Printf("WARN: artist_lookup_failed track=%q track_id=%s artist_id=%s stage=%s error=%v",
				entry.Name, entry.ID, a.ID, StageArtistMetadata, err)
			continue
		}

		for _, g := range info.Genres {
			if !genreSeen[g] {
				genreSeen[g] = true
				t.Genres = append(t.Genres, g)
			}
		}
		if i == 0 {
			t.ArtistPopularity = info.Popularity
		}
	}

	t.Album = track.Album{Title: entry.Album, MainArtistName: t.Artists[0].Name}

	resolved := h.links.Resolve(ctx, entry.URL)
	if err := ctx.Err(); err != nil {
		return track.Track{}, StageLinkResolution, err
	}
	t.YouTubeURL = resolved.YouTube
	t.AppleMusicURL = resolved.AppleMusic

	return t, "", nil
}

func (h *Harvester) save(r *run) bool {
	if err := h.store.Save(r.playlistID, r.tracks, len(r.tracks)); err != nil {
		log.Printf("WARN: checkpoint_save_failed tracks=%d error=%v", len(r.tracks), err)
		return false
	}
	log.Printf("INFO: checkpoint_saved path=%s current_index=%d", h.store.Path(), len(r.tracks))
	return true
}

// abort checkpoints progress and wraps cause as an abort error. Causes that
// are not quota or interrupt class are reported as connection failures:
// the catalog refused a call the harvest cannot continue without.
func (h *Harvester) abort(r *run, stage string, cause error) error {
	kind := classify(cause)
	if kind == KindOther {
		kind = KindConnectionFailure
	}

	herr := &Error{Kind: kind, Stage: stage, Cursor: len(r.tracks), Err: cause}
	if h.save(r) {
		herr.CheckpointPath = h.store.Path()
	}
	log.Printf("ERROR: harvest_aborted kind=%s stage=%s current_index=%d error=%v", kind, stage, herr.Cursor, cause)
	return herr
}
