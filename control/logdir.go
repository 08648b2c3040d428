package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const runDirPrefix = "run_"

// logBaseDir returns PLAYLISTDL_LOG_DIR, or ".logs" in the working directory.
func logBaseDir() string {
	if d := os.Getenv("PLAYLISTDL_LOG_DIR"); d != "" {
		return d
	}
	return ".logs"
}

// runDirKind names the command that owns a run directory and its event log.
type runDirKind string

const (
	RunDirRun      runDirKind = "run"
	RunDirHarvest  runDirKind = "harvest"
	RunDirDownload runDirKind = "download"
)

// CreateRunDir makes <base>/run_<kind>_<timestamp>_<nanos>/ and returns it
// together with the event log path inside it (<kind>.log).
func CreateRunDir(kind runDirKind) (runDir, logPath string, err error) {
	base := logBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", "", fmt.Errorf("create log base dir: %w", err)
	}

	now := time.Now()
	stamp := strings.ReplaceAll(now.Format(time.RFC3339), ":", "-")
	name := runDirPrefix + string(kind) + "_" + stamp + "_" + strconv.FormatInt(now.UnixNano(), 10)
	runDir = filepath.Join(base, name)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", "", fmt.Errorf("create run dir: %w", err)
	}
	return runDir, filepath.Join(runDir, string(kind)+".log"), nil
}

// PruneRunDirs removes the oldest run directories so that at most keep remain.
// keep <= 0 keeps everything. It returns the number removed.
func PruneRunDirs(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(logBaseDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read log dir: %w", err)
	}

	type runDir struct {
		path    string
		modTime time.Time
	}
	var dirs []runDir
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), runDirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, runDir{path: filepath.Join(logBaseDir(), entry.Name()), modTime: info.ModTime()})
	}
	if len(dirs) <= keep {
		return 0, nil
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].modTime.After(dirs[j].modTime) })
	removed := 0
	for _, d := range dirs[keep:] {
		if err := os.RemoveAll(d.path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", d.path, err)
		}
		removed++
	}
	return removed, nil
}
