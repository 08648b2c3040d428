package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/sv4u/playlistdl/download"
	"github.com/sv4u/playlistdl/download/audio"
	"github.com/sv4u/playlistdl/download/checkpoint"
	"github.com/sv4u/playlistdl/download/config"
	"github.com/sv4u/playlistdl/download/harvest"
	"github.com/sv4u/playlistdl/download/history"
	"github.com/sv4u/playlistdl/download/links"
	"github.com/sv4u/playlistdl/download/logging"
	"github.com/sv4u/playlistdl/download/metadata"
	"github.com/sv4u/playlistdl/download/spotify"
	"github.com/sv4u/playlistdl/download/track"
)

// Runner holds the dependencies of the CLI commands and provides one method
// per command action.
type Runner struct {
	logger      *log.Logger
	output      io.Writer
	input       io.Reader
	interactive func() bool
	provider    download.AudioProvider

	// Set once a catalog client exists, for abort reports.
	client *spotify.SpotifyClient
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
	Input  io.Reader

	// Interactive reports whether the resume prompt may be shown.
	Interactive func() bool

	// Provider replaces the yt-dlp hosting service.
	Provider download.AudioProvider
}

// NewRunner creates a new Runner with the provided options.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = newConsoleLogger(os.Stderr)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Interactive == nil {
		opts.Interactive = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	}
	return &Runner{
		logger:      opts.Logger,
		output:      opts.Output,
		input:       opts.Input,
		interactive: opts.Interactive,
		provider:    opts.Provider,
	}
}

func newConsoleLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true, TimeFormat: time.Kitchen})
}

// env is the per-command setup shared by every action.
type env struct {
	cfg     *config.Config
	tracker *history.Tracker
	runLog  *logging.Logger
	logPath string
	events  *LogTeeWriter
	close   func()
}

func (r *Runner) setup(cmd *cli.Command, kind runDirKind) (*env, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	_, logPath, err := CreateRunDir(kind)
	if err != nil {
		return nil, err
	}
	if n, err := PruneRunDirs(cfg.Paths.HistoryRetention); err != nil {
		r.logger.Warn("prune event logs", "err", err)
	} else if n > 0 {
		r.logger.Debug("pruned event logs", "removed", n)
	}
	tee, err := NewLogTeeWriter(logPath)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	var sink io.Writer = tee
	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
		sink = io.MultiWriter(tee, r.logger.StandardLog().Writer())
	}
	restore := RedirectLogToFile(sink)

	runLog, err := logging.NewLogger(cfg.Paths.Log, "playlistdl")
	if err != nil {
		restore()
		_ = tee.Close()
		return nil, err
	}

	tracker, err := history.NewTracker(cfg.Paths.History, cfg.Paths.HistoryRetention)
	if err != nil {
		r.logger.Warn("run history disabled", "err", err)
		tracker = nil
	}

	return &env{
		cfg:     cfg,
		tracker: tracker,
		runLog:  runLog,
		logPath: logPath,
		events:  tee,
		close: func() {
			_ = runLog.Close()
			restore()
			_ = tee.Close()
		},
	}, nil
}

// newHarvester builds the catalog side. The input file and credentials are
// checked before the catalog client authenticates.
func (r *Runner) newHarvester(cfg *config.Config) (*harvest.Harvester, error) {
	if _, err := config.ReadPlaylistURL(cfg.Paths.Input); err != nil {
		return nil, err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	client, err := spotify.NewSpotifyClient(&spotify.Config{
		ClientID:          cfg.Spotify.ClientID,
		ClientSecret:      cfg.Spotify.ClientSecret,
		CacheMaxSize:      cfg.Spotify.CacheMaxSize,
		CacheTTL:          cfg.Spotify.CacheTTL,
		RateLimitEnabled:  cfg.Spotify.RateLimitEnabled,
		RateLimitRequests: cfg.Spotify.RateLimitRequests,
		RateLimitWindow:   cfg.Spotify.RateLimitWindow,
		MaxRetries:        cfg.Spotify.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	r.client = client

	resolver := links.NewResolver(links.Config{
		BaseURL:           cfg.Links.BaseURL,
		APIKey:            cfg.Links.APIKey,
		Timeout:           time.Duration(cfg.Links.TimeoutSeconds) * time.Second,
		RequestsPerMinute: cfg.Links.RequestsPerMinute,
	})

	return harvest.New(
		spotify.NewCatalog(client),
		resolver,
		checkpoint.NewStore(cfg.Paths.Checkpoint),
		harvest.Config{CheckpointInterval: cfg.Harvest.CheckpointInterval},
	), nil
}

func (r *Runner) newDownloader(cfg *config.Config) *download.Downloader {
	provider := r.provider
	if provider == nil {
		provider = audio.NewProvider(&audio.Config{
			YtDlpPath:    cfg.Download.YtDlpPath,
			CacheMaxSize: cfg.Download.SearchCacheMaxSize,
			CacheTTL:     cfg.Download.SearchCacheTTL,
		})
	}

	var embedder download.TagEmbedder
	if cfg.Download.EmbedTags() {
		embedder = metadata.NewEmbedder()
	}

	options := audio.NewOptions(cfg.Download.Codec, cfg.Download.Bitrate)
	return download.NewDownloader(cfg.Download.OutputDir, options, provider, embedder)
}

func (e *env) service(h download.TrackHarvester, d download.TrackResolver) *download.Service {
	paths := download.Paths{Input: e.cfg.Paths.Input, Metadata: e.cfg.Paths.Metadata}
	return download.NewService(paths, h, d, e.tracker, e.runLog)
}

// Run harvests and downloads.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	e, err := r.setup(cmd, RunDirRun)
	if err != nil {
		return err
	}
	defer e.close()

	h, err := r.newHarvester(e.cfg)
	if err != nil {
		return err
	}
	svc := e.service(h, r.newDownloader(e.cfg))

	resume, err := r.resolveResume(cmd.String("resume"), svc.HasCheckpoint(), e.cfg.Paths.Checkpoint)
	if err != nil {
		return err
	}

	r.logger.Info("starting run", "resume", resume, "log", e.logPath)
	stats, err := svc.Run(ctx, resume)
	r.report(stats, e)
	return err
}

// Harvest writes the metadata file only.
func (r *Runner) Harvest(ctx context.Context, cmd *cli.Command) error {
	e, err := r.setup(cmd, RunDirHarvest)
	if err != nil {
		return err
	}
	defer e.close()

	h, err := r.newHarvester(e.cfg)
	if err != nil {
		return err
	}
	svc := e.service(h, nil)

	resume, err := r.resolveResume(cmd.String("resume"), svc.HasCheckpoint(), e.cfg.Paths.Checkpoint)
	if err != nil {
		return err
	}

	r.logger.Info("starting harvest", "resume", resume, "log", e.logPath)
	stats, err := svc.Harvest(ctx, resume)
	if err == nil {
		r.logger.Info("harvest complete", "tracks", stats.Harvested, "metadata", e.cfg.Paths.Metadata)
	}
	return err
}

// Download processes the existing metadata file; no catalog access needed.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	e, err := r.setup(cmd, RunDirDownload)
	if err != nil {
		return err
	}
	defer e.close()

	svc := e.service(nil, r.newDownloader(e.cfg))

	r.logger.Info("starting download", "metadata", e.cfg.Paths.Metadata, "output", e.cfg.Download.OutputDir)
	stats, err := svc.Download(ctx)
	r.report(stats, e)
	return err
}

// Status prints the checkpoint, metadata file and recent runs.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	rows := [][]string{}
	if cp, ok := checkpoint.NewStore(cfg.Paths.Checkpoint).Load(); ok {
		rows = append(rows, []string{"checkpoint", cfg.Paths.Checkpoint,
			fmt.Sprintf("%d tracks, saved %s", cp.CurrentIndex, cp.SavedAt().Format(time.RFC3339))})
	} else {
		rows = append(rows, []string{"checkpoint", cfg.Paths.Checkpoint, "none"})
	}
	if tracks, err := track.Load(cfg.Paths.Metadata); err == nil {
		rows = append(rows, []string{"metadata", cfg.Paths.Metadata, fmt.Sprintf("%d tracks", len(tracks))})
	} else {
		rows = append(rows, []string{"metadata", cfg.Paths.Metadata, "missing"})
	}
	fmt.Fprintln(r.output, renderTable([]string{"Artifact", "Path", "State"}, rows, nil))

	tracker, err := history.NewTracker(cfg.Paths.History, 0)
	if err != nil {
		return err
	}
	runs, err := tracker.ListRuns()
	if err != nil {
		return err
	}
	if limit := int(cmd.Int("limit")); limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	if len(runs) == 0 {
		fmt.Fprintln(r.output, "No runs recorded.")
		return nil
	}
	fmt.Fprintln(r.output, runsTable(runs))
	return nil
}

// Version prints the build version.
func (r *Runner) Version(ctx context.Context, cmd *cli.Command) error {
	fmt.Fprintf(r.output, "playlistdl version %s\n", Version)
	return nil
}

func (r *Runner) report(stats download.Stats, e *env) {
	fmt.Fprintln(r.output, summaryTable(stats))
	if warnings, errs := e.events.Counts(); warnings+errs > 0 {
		r.logger.Info("event log", "path", e.logPath, "warnings", warnings, "errors", errs)
	}
	if r.client != nil {
		cs := r.client.CacheStats()
		r.logger.Debug("artist cache", "hits", cs.Hits, "misses", cs.Misses, "hit_rate", cs.HitRate)
	}
	if stats.Failed > 0 {
		r.logger.Warn("some tracks failed", "failed", stats.Failed, "total", stats.Total)
	}
}

// fail reports err and returns its exit code.
func (r *Runner) fail(err error) int {
	code := ExitCode(err)

	var herr *harvest.Error
	switch {
	case errors.As(err, &herr):
		kv := []any{"kind", herr.Kind, "stage", herr.Stage}
		if herr.CheckpointPath != "" {
			kv = append(kv, "checkpoint", herr.CheckpointPath, "tracks", herr.Cursor)
		}
		if r.client != nil {
			if info := r.client.RateLimitInfo(); info != nil {
				kv = append(kv, "retry_after", info.RetryAfter)
			}
		}
		r.logger.Error("harvest aborted", kv...)
	case code == ExitMetadataMissing:
		r.logger.Error("nothing to download, run harvest first", "err", err)
	case code == ExitInterrupted:
		r.logger.Warn("interrupted", "err", err)
	default:
		r.logger.Error("command failed", "err", err)
	}
	return code
}
