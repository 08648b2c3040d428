// Package download sequences a run: harvest the playlist into the metadata
// artifact, then resolve every harvested track to an audio file.
package download

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sv4u/playlistdl/download/config"
	"github.com/sv4u/playlistdl/download/harvest"
	"github.com/sv4u/playlistdl/download/history"
	"github.com/sv4u/playlistdl/download/logging"
	"github.com/sv4u/playlistdl/download/spotify"
	"github.com/sv4u/playlistdl/download/track"
)

// ErrMetadataMissing is returned by Download when the metadata artifact is
// absent, unreadable or holds no tracks.
var ErrMetadataMissing = errors.New("metadata artifact missing or empty")

// Run phases, as recorded in the run history.
const (
	PhaseHarvesting  = "harvesting"
	PhaseDownloading = "downloading"
	PhaseCompleted   = "completed"
)

// TrackHarvester produces the enriched track list for a playlist.
type TrackHarvester interface {
	HasCheckpoint() bool
	Harvest(ctx context.Context, playlistURL string, resume harvest.Resume) ([]track.Track, error)
}

// TrackResolver resolves one track to an audio file.
type TrackResolver interface {
	ResolveAndFetch(ctx context.Context, t *track.Track) Outcome
}

// Stats are the aggregate counts of a run.
type Stats struct {
	Harvested  int
	Total      int
	Downloaded int
	Direct     int
	Search     int
	Skipped    int
	Failed     int
}

// Succeeded returns the number of tracks that have a file on disk.
func (s Stats) Succeeded() int {
	return s.Downloaded + s.Skipped
}

func (s *Stats) record(o Outcome) {
	if !o.Success {
		s.Failed++
		return
	}
	switch o.Method {
	case MethodSkipped:
		s.Skipped++
	case MethodDirect:
		s.Direct++
		s.Downloaded++
	case MethodSearch:
		s.Search++
		s.Downloaded++
	}
}

func (s Stats) history() history.Statistics {
	return history.Statistics{
		Harvested:  s.Harvested,
		Total:      s.Total,
		Downloaded: s.Downloaded,
		Direct:     s.Direct,
		Search:     s.Search,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
	}
}

// Paths are the files a Service reads and writes.
type Paths struct {
	Input    string
	Metadata string
}

// Service is the orchestrator. The harvester is only needed by Harvest and
// Run; the download phase works offline from the metadata artifact.
type Service struct {
	paths      Paths
	harvester  TrackHarvester
	downloader TrackResolver
	history    *history.Tracker
	runLog     *logging.Logger
}

// NewService creates a new service. tracker may be nil to disable run
// history; runLog may be nil to disable the JSON run log.
func NewService(paths Paths, harvester TrackHarvester, downloader TrackResolver, tracker *history.Tracker, runLog *logging.Logger) *Service {
	if runLog == nil {
		runLog = logging.Discard()
	}
	return &Service{
		paths:      paths,
		harvester:  harvester,
		downloader: downloader,
		history:    tracker,
		runLog:     runLog,
	}
}

// HasCheckpoint reports whether an interrupted harvest can be resumed.
func (s *Service) HasCheckpoint() bool {
	return s.harvester != nil && s.harvester.HasCheckpoint()
}

// Harvest reads the playlist URL from the input file, harvests it and writes
// the metadata artifact.
func (s *Service) Harvest(ctx context.Context, resume harvest.Resume) (Stats, error) {
	var stats Stats
	err := s.record("harvest", &stats, func() error {
		n, err := s.harvest(ctx, resume)
		stats.Harvested = n
		return err
	})
	return stats, err
}

// Download resolves every track in the metadata artifact. Per-track failures
// are counted, not returned; the error is only set when the artifact is
// unusable or the run was interrupted.
func (s *Service) Download(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.record("download", &stats, func() error {
		return s.download(ctx, &stats)
	})
	return stats, err
}

// Run harvests and then downloads. A harvest failure skips the download phase.
func (s *Service) Run(ctx context.Context, resume harvest.Resume) (Stats, error) {
	var stats Stats
	err := s.record("run", &stats, func() error {
		n, err := s.harvest(ctx, resume)
		stats.Harvested = n
		if err != nil {
			return err
		}
		return s.download(ctx, &stats)
	})
	return stats, err
}

func (s *Service) harvest(ctx context.Context, resume harvest.Resume) (int, error) {
	fields := logging.Fields{Operation: "harvest"}

	if s.harvester == nil {
		return 0, fmt.Errorf("harvest is not configured")
	}

	playlistURL, err := config.ReadPlaylistURL(s.paths.Input)
	if err != nil {
		s.runLog.Error("Invalid playlist input", fields, err)
		return 0, err
	}
	if s.history != nil {
		s.history.SetPhase(PhaseHarvesting)
		if id, err := spotify.ExtractPlaylistID(playlistURL); err == nil {
			s.history.SetPlaylistID(id)
			s.history.AddActivity("harvest_started", fmt.Sprintf("Harvesting playlist %s", id), map[string]any{
				"playlist_id": id,
				"resume":      resume.String(),
			})
		}
	}

	log.Printf("INFO: harvest_start url=%s resume=%s", playlistURL, resume)
	s.runLog.Info(fmt.Sprintf("Harvesting %s (resume=%s)", playlistURL, resume), fields)

	tracks, err := s.harvester.Harvest(ctx, playlistURL, resume)
	if err != nil {
		log.Printf("ERROR: harvest_failed url=%s kind=%s error=%v", playlistURL, harvest.KindOf(err), err)
		s.runLog.Error("Harvest aborted", fields, err)
		var herr *harvest.Error
		if errors.As(err, &herr) {
			return herr.Cursor, err
		}
		return len(tracks), err
	}

	if len(tracks) == 0 {
		log.Printf("WARN: harvest_empty url=%s", playlistURL)
		s.runLog.Warn("Harvest produced no tracks", fields, nil)
	}

	if err := track.Save(s.paths.Metadata, tracks); err != nil {
		s.runLog.Error("Failed to write metadata artifact", fields, err)
		return len(tracks), err
	}

	log.Printf("INFO: harvest_complete tracks=%d metadata=%s", len(tracks), s.paths.Metadata)
	s.runLog.Info(fmt.Sprintf("Harvested %d tracks into %s", len(tracks), s.paths.Metadata), fields)
	return len(tracks), nil
}

func (s *Service) download(ctx context.Context, stats *Stats) error {
	fields := logging.Fields{Operation: "download"}

	tracks, err := track.Load(s.paths.Metadata)
	if err != nil {
		s.runLog.Error("Cannot read metadata artifact", fields, err)
		return fmt.Errorf("%w: %v", ErrMetadataMissing, err)
	}
	if len(tracks) == 0 {
		err := fmt.Errorf("%w: %s has no tracks", ErrMetadataMissing, s.paths.Metadata)
		s.runLog.Error("No tracks to download", fields, err)
		return err
	}

	stats.Total = len(tracks)
	if s.history != nil {
		s.history.SetPhase(PhaseDownloading)
	}
	log.Printf("INFO: download_phase_start tracks=%d", len(tracks))
	s.runLog.Info(fmt.Sprintf("Downloading %d tracks", len(tracks)), fields)

	for i := range tracks {
		if err := ctx.Err(); err != nil {
			log.Printf("WARN: download_phase_interrupted completed=%d total=%d", i, len(tracks))
			s.runLog.Warn(fmt.Sprintf("Interrupted after %d of %d tracks", i, len(tracks)), fields, err)
			return fmt.Errorf("download interrupted after %d of %d tracks: %w", i, len(tracks), err)
		}

		t := &tracks[i]
		outcome := s.downloader.ResolveAndFetch(ctx, t)
		stats.record(outcome)
		s.logOutcome(t, outcome)
	}

	// The last track may have been cut short.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}

	log.Printf("INFO: download_phase_complete total=%d downloaded=%d skipped=%d failed=%d",
		stats.Total, stats.Downloaded, stats.Skipped, stats.Failed)
	return nil
}

func (s *Service) logOutcome(t *track.Track, o Outcome) {
	fields := logging.Fields{
		Operation: "download",
		Track:     t.Title,
		TrackID:   t.CatalogID,
		Stage:     string(o.Method),
	}
	if o.Success {
		s.runLog.Info(fmt.Sprintf("Track ready (%s)", o.Method), fields)
		return
	}
	s.runLog.Error("Track download failed", fields, errors.New(o.Detail))
	if s.history != nil {
		s.history.AddActivity("track_failed", fmt.Sprintf("%s: %s", t.Title, o.Detail), map[string]any{
			"spotify_id": t.CatalogID,
			"method":     string(o.Method),
		})
	}
}

// record wraps one command in a history run and stops it with the final
// state and counts.
func (s *Service) record(command string, stats *Stats, fn func() error) error {
	if s.history == nil {
		return fn()
	}

	runID := s.history.StartRun(command, "")
	err := fn()

	state := history.StateCompleted
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
		switch harvest.KindOf(err) {
		case harvest.KindInterrupted:
			state = history.StateInterrupted
		case harvest.KindQuotaExceeded, harvest.KindConnectionFailure:
			state = history.StateAborted
		default:
			state = history.StateError
		}
	} else {
		s.history.SetPhase(PhaseCompleted)
	}

	if stopErr := s.history.StopRun(state, stats.history(), errMsg); stopErr != nil {
		log.Printf("WARN: run_history_save_failed run_id=%s error=%v", runID, stopErr)
	}
	return err
}
